package wizard

import (
	"fmt"
	"strconv"
)

// Option is a catalog entry normalized at fetch time to one uniform shape.
// ID is the identity select inputs use, ResourceID is the underlying
// product/resource id sent upstream on submission (for plain resources the
// two are equal). Price is the unit price snapshot at fetch time.
type Option struct {
	ID         string  `json:"id"`
	ResourceID string  `json:"resource_id"`
	Label      string  `json:"label"`
	Price      float64 `json:"price"`
	Region     string  `json:"region,omitempty"`
}

// Draft is the single in-flight instance configuration being edited. Numeric
// fields are pointers so "not entered yet" is distinguishable from zero.
type Draft struct {
	Name            string `json:"name"`
	StorageSizeGB   *int   `json:"storage_size_gb"`
	Months          *int   `json:"months"`
	ReplicaCount    *int   `json:"replica_count"`
	BandwidthCount  *int   `json:"bandwidth_count"`
	FloatingIPCount *int   `json:"floating_ip_count"`

	Project         *Option `json:"project"`
	ComputeInstance *Option `json:"compute_instance"`
	OSImage         *Option `json:"os_image"`
	VolumeType      *Option `json:"volume_type"`
	Bandwidth       *Option `json:"bandwidth"`
	FloatingIP      *Option `json:"floating_ip"`

	NetworkID   string `json:"network_id"`
	SubnetID    string `json:"subnet_id"`
	KeypairName string `json:"keypair_name"`

	SecurityGroupIDs []string `json:"security_group_ids"`
}

func emptyDraft() Draft {
	one := 1
	return Draft{ReplicaCount: &one}
}

// FieldKind describes how a draft field is written: plain text, coerced
// integer, an option resolved against a catalog list, a raw id string stored
// without resolution, a toggled string list, or a boolean flag.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldInteger
	FieldReference
	FieldRawReference
	FieldMulti
	FieldBool
)

// fieldSchema is the single source of truth for field names and their
// coercion rules. Session-level fields (title, description, tags, fast_track)
// share the schema with draft fields.
var fieldSchema = map[string]FieldKind{
	"title":       FieldText,
	"description": FieldText,
	"fast_track":  FieldBool,
	"tags":        FieldMulti,

	"name":              FieldText,
	"storage_size_gb":   FieldInteger,
	"months":            FieldInteger,
	"replica_count":     FieldInteger,
	"bandwidth_count":   FieldInteger,
	"floating_ip_count": FieldInteger,

	"project_id":          FieldReference,
	"compute_instance_id": FieldReference,
	"os_image_id":         FieldReference,
	"volume_type_id":      FieldReference,
	"bandwidth_id":        FieldReference,
	"floating_ip_id":      FieldReference,

	"network_id":   FieldRawReference,
	"subnet_id":    FieldRawReference,
	"keypair_name": FieldRawReference,

	"security_group_ids": FieldMulti,
}

// FieldKindOf reports the schema kind for a field name.
func FieldKindOf(name string) (FieldKind, bool) {
	k, ok := fieldSchema[name]
	return k, ok
}

// UpdateField writes a text, integer or boolean field. Integer fields are
// coerced on write: empty or unparsable input becomes "not set". Editing a
// field clears its error and any general error.
func (s *Session) UpdateField(name, raw string) error {
	kind, ok := fieldSchema[name]
	if !ok {
		return fmt.Errorf("unknown wizard field %q", name)
	}

	switch kind {
	case FieldText:
		switch name {
		case "title":
			s.Title = raw
		case "description":
			s.Description = raw
		case "name":
			s.Draft.Name = raw
		}
	case FieldBool:
		s.FastTrack = raw == "true" || raw == "1"
	case FieldInteger:
		v := coerceInt(raw)
		switch name {
		case "storage_size_gb":
			s.Draft.StorageSizeGB = v
		case "months":
			s.Draft.Months = v
		case "replica_count":
			s.Draft.ReplicaCount = v
		case "bandwidth_count":
			s.Draft.BandwidthCount = v
		case "floating_ip_count":
			s.Draft.FloatingIPCount = v
		}
	case FieldRawReference:
		switch name {
		case "network_id":
			s.Draft.NetworkID = raw
		case "subnet_id":
			s.Draft.SubnetID = raw
		case "keypair_name":
			s.Draft.KeypairName = raw
		}
	default:
		return fmt.Errorf("field %q requires SelectReference or ToggleValue", name)
	}

	s.clearFieldError(name)
	return nil
}

// SelectReference resolves a raw select value against the normalized option
// list and stores the matched option (nil when the value is empty or matches
// nothing, so a stale id from a previous project cannot survive).
func (s *Session) SelectReference(name, raw string, options []Option) error {
	if kind, ok := fieldSchema[name]; !ok || kind != FieldReference {
		return fmt.Errorf("field %q is not a reference field", name)
	}

	var match *Option
	if raw != "" {
		for i := range options {
			if options[i].ID == raw {
				match = &options[i]
				break
			}
		}
	}

	switch name {
	case "project_id":
		s.Draft.Project = match
	case "compute_instance_id":
		s.Draft.ComputeInstance = match
	case "os_image_id":
		s.Draft.OSImage = match
	case "volume_type_id":
		s.Draft.VolumeType = match
	case "bandwidth_id":
		s.Draft.Bandwidth = match
	case "floating_ip_id":
		s.Draft.FloatingIP = match
	}

	s.clearFieldError(name)
	return nil
}

// ToggleValue flips membership of value in a list field: added when absent,
// removed when present.
func (s *Session) ToggleValue(name, value string) error {
	if kind, ok := fieldSchema[name]; !ok || kind != FieldMulti {
		return fmt.Errorf("field %q is not a multi-value field", name)
	}

	switch name {
	case "tags":
		s.Tags = toggle(s.Tags, value)
	case "security_group_ids":
		s.Draft.SecurityGroupIDs = toggle(s.Draft.SecurityGroupIDs, value)
	}

	s.clearFieldError(name)
	return nil
}

func toggle(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, value)
}

func coerceInt(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
