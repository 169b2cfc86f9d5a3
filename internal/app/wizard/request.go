package wizard

import "fmt"

// VolumeAllocation is one volume type + size pair inside a pricing request.
type VolumeAllocation struct {
	TypeID string `json:"volume_type_id"`
	SizeGB int    `json:"size_gb"`
}

// CountedAllocation is an optional resource taken N times (bandwidth plans,
// floating IPs).
type CountedAllocation struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// RequestSummary holds denormalized labels for display only; the upstream
// order API never sees it.
type RequestSummary struct {
	Compute string `json:"compute"`
	Storage string `json:"storage"`
	OS      string `json:"os"`
}

// PricingRequest is one committed, fully specified instance configuration.
// Once built it is immutable; the only list operations are append (via
// CommitDraft) and removal by index.
type PricingRequest struct {
	Name              string             `json:"name"`
	ProjectID         string             `json:"project_id"`
	Region            string             `json:"region"`
	OSImageID         string             `json:"os_image_id"`
	ComputeInstanceID string             `json:"compute_instance_id"`
	Months            int                `json:"months"`
	ReplicaCount      int                `json:"replica_count"`
	Volumes           []VolumeAllocation `json:"volumes"`
	KeypairName       string             `json:"keypair_name"`
	NetworkID         string             `json:"network_id,omitempty"`
	SubnetID          string             `json:"subnet_id,omitempty"`
	SecurityGroupIDs  []string           `json:"security_group_ids,omitempty"`
	Bandwidth         *CountedAllocation `json:"bandwidth,omitempty"`
	FloatingIP        *CountedAllocation `json:"floating_ip,omitempty"`
	Summary           RequestSummary     `json:"summary"`
}

// validateDraft runs the ResourceAllocation checks. Every required id is
// checked here, before append, so the request list never holds an entry with
// a missing id.
func (s *Session) validateDraft() map[string]string {
	errs := map[string]string{}
	d := &s.Draft

	if d.Name == "" {
		errs["name"] = "instance name is required"
	}
	if d.Project == nil {
		errs["project_id"] = "select a project"
	}
	if d.StorageSizeGB == nil || *d.StorageSizeGB < 1 {
		errs["storage_size_gb"] = "storage size must be a positive number"
	}
	if d.ComputeInstance == nil {
		errs["compute_instance_id"] = "select a compute instance"
	}
	if d.VolumeType == nil {
		errs["volume_type_id"] = "select a volume type"
	}
	if d.OSImage == nil {
		errs["os_image_id"] = "select an OS image"
	}
	if d.KeypairName == "" {
		errs["keypair_name"] = "select a key pair"
	}
	if d.Months == nil || *d.Months < 1 {
		errs["months"] = "term must be at least one month"
	}

	return errs
}

// CommitDraft validates the in-flight draft, appends it to the request list
// as a PricingRequest and resets the draft to its empty shape. On validation
// failure both the draft and the list are left untouched and the field
// errors are surfaced.
func (s *Session) CommitDraft() error {
	if errs := s.validateDraft(); len(errs) > 0 {
		for f, msg := range errs {
			s.setFieldError(f, msg)
		}
		return ErrValidation
	}

	d := &s.Draft
	req := PricingRequest{
		Name:              d.Name,
		ProjectID:         d.Project.ID,
		Region:            d.Project.Region,
		OSImageID:         d.OSImage.ResourceID,
		ComputeInstanceID: d.ComputeInstance.ResourceID,
		Months:            *d.Months,
		ReplicaCount:      intOr(d.ReplicaCount, 1),
		Volumes: []VolumeAllocation{
			{TypeID: d.VolumeType.ResourceID, SizeGB: *d.StorageSizeGB},
		},
		KeypairName:      d.KeypairName,
		NetworkID:        d.NetworkID,
		SubnetID:         d.SubnetID,
		SecurityGroupIDs: d.SecurityGroupIDs,
		Summary: RequestSummary{
			Compute: d.ComputeInstance.Label,
			Storage: fmt.Sprintf("%d GiB %s", *d.StorageSizeGB, d.VolumeType.Label),
			OS:      d.OSImage.Label,
		},
	}
	if d.Bandwidth != nil {
		req.Bandwidth = &CountedAllocation{ID: d.Bandwidth.ResourceID, Count: intOr(d.BandwidthCount, 1)}
	}
	if d.FloatingIP != nil {
		req.FloatingIP = &CountedAllocation{ID: d.FloatingIP.ResourceID, Count: intOr(d.FloatingIPCount, 1)}
	}

	s.Requests = append(s.Requests, req)
	s.Draft = emptyDraft()
	s.GeneralError = ""
	return nil
}

// RemoveRequest deletes the request at index, preserving the order of the
// remaining entries.
func (s *Session) RemoveRequest(index int) error {
	if index < 0 || index >= len(s.Requests) {
		return fmt.Errorf("request index %d out of range", index)
	}
	s.Requests = append(s.Requests[:index], s.Requests[index+1:]...)
	return nil
}

func intOr(v *int, fallback int) int {
	if v == nil || *v < 1 {
		return fallback
	}
	return *v
}
