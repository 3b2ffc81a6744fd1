package models

import (
	"errors"

	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

func (e PurchaseStatus) IsValid() bool {
	switch e {
	case PurchaseStatusPending, PurchaseStatusCompleted, PurchaseStatusCancelled:
		return true
	}
	return false
}

func (e PurchaseStatus) String() string {
	return string(e)
}

// IsFinal reports whether the purchase is closed for editing under strict mode.
func (e PurchaseStatus) IsFinal() bool {
	return e == PurchaseStatusCompleted || e == PurchaseStatusCancelled
}

func PurchaseStatusFrom(s purchasing.Status) (PurchaseStatus, error) {
	status := PurchaseStatus(s)
	if !status.IsValid() {
		return "", errors.New("invalid purchase status")
	}
	return status, nil
}

type HistoryAction string

const (
	HistoryActionCreate HistoryAction = "CREATE"
	HistoryActionUpdate HistoryAction = "UPDATE"
)
