package appErrors

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned by the generation client when the model
// produces no usable text. Treated as a transient send failure.
var ErrEmptyCompletion = errors.New("generation returned empty completion")

// ErrItemNotFound is a sentinel for a missing dispatchable item.
type ErrItemNotFound struct {
	ItemID int
}

func (e *ErrItemNotFound) Error() string {
	return fmt.Sprintf("dispatchable item with ID %d not found", e.ItemID)
}

func NewItemNotFound(id int) error {
	return &ErrItemNotFound{ItemID: id}
}

// ErrCampaignNotFound is a sentinel for a missing campaign.
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}
