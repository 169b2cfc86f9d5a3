package repository

import (
	"fmt"
	"time"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/ds"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"
)

// RecordOrder stores the durable trace of a submitted batch together with
// its pricing requests.
func (r *Repository) RecordOrder(creatorID uint, title string, fastTrack bool, intent *wizard.OrderIntent, requests []wizard.PricingRequest) (*ds.ProvisionOrder, error) {
	order := ds.ProvisionOrder{
		Reference: intent.Reference,
		CreatorID: creatorID,
		Status:    ds.OrderPendingPayment,
		Title:     title,
		Total:     intent.Pricing.Total,
		FastTrack: fastTrack,
		CreatedAt: time.Now(),
	}
	for _, req := range requests {
		item := ds.OrderItem{
			Name:              req.Name,
			ProjectID:         req.ProjectID,
			Region:            req.Region,
			ComputeInstanceID: req.ComputeInstanceID,
			OSImageID:         req.OSImageID,
			Months:            req.Months,
			ReplicaCount:      req.ReplicaCount,
			ComputeLabel:      req.Summary.Compute,
			StorageLabel:      req.Summary.Storage,
			OSLabel:           req.Summary.OS,
		}
		if len(req.Volumes) > 0 {
			item.StorageSizeGB = req.Volumes[0].SizeGB
		}
		order.Items = append(order.Items, item)
	}

	if err := r.db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("record order %s: %w", intent.Reference, err)
	}
	return &order, nil
}

func (r *Repository) GetOrderByReference(reference string) (*ds.ProvisionOrder, error) {
	var order ds.ProvisionOrder
	err := r.db.Preload("Items").Where("reference = ?", reference).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) GetOrdersByCreator(creatorID uint) ([]ds.ProvisionOrder, error) {
	var orders []ds.ProvisionOrder
	err := r.db.Preload("Items").
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkOrderPaid records a confirmed card payment.
func (r *Repository) MarkOrderPaid(reference string) error {
	now := time.Now()
	return r.updateOrderStatus(reference, ds.OrderPaid, &now)
}

// MarkOrderAwaitingTransfer flags an order settled by manual bank transfer.
func (r *Repository) MarkOrderAwaitingTransfer(reference string) error {
	return r.updateOrderStatus(reference, ds.OrderAwaitingTransfer, nil)
}

func (r *Repository) MarkOrderFailed(reference string) error {
	return r.updateOrderStatus(reference, ds.OrderFailed, nil)
}

func (r *Repository) updateOrderStatus(reference, status string, paidAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if paidAt != nil {
		updates["paid_at"] = paidAt
	}
	res := r.db.Model(&ds.ProvisionOrder{}).Where("reference = ?", reference).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s not found", reference)
	}
	return nil
}

// AttachProof stores the minio object name of an uploaded transfer receipt.
func (r *Repository) AttachProof(reference, objectName string) error {
	res := r.db.Model(&ds.ProvisionOrder{}).
		Where("reference = ?", reference).
		Update("proof_object", objectName)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s not found", reference)
	}
	return nil
}
