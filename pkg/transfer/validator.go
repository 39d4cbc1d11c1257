package transfer

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/tdb/stor"
)

const (
	minDestinationBytes = 1
	maxDestinationBytes = 1024
)

// Validator checks transfer requests against the request's provider
// requirements and the requester's permissions before any entities are
// created or workers launched.
type Validator struct {
	stors        *stor.Stors
	uploadBucket string
}

func NewValidator(stors *stor.Stors, uploadBucket string) *Validator {
	return &Validator{stors: stors, uploadBucket: uploadBucket}
}

// ValidateUploadItems validates every item of an upload request, resolves
// each item's owner and fills in its destination. Validation is all or
// nothing: the first invalid item fails the whole request.
func (v *Validator) ValidateUploadItems(impl *Implementation, requester *model.User, items []UploadItem) ([]UploadItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: upload_info", ErrMissingField)
	}

	validated := make([]UploadItem, 0, len(items))
	for i, item := range items {
		if err := impl.ValidateItemFields(item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		impl.NormalizeItem(&item)

		owner, err := v.resolveOwner(requester, item.Owner)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		item.Owner = owner.ID

		if item.Name == "" {
			item.Name = filepath.Base(item.Path)
		}

		item.Destination = fmt.Sprintf("%s/%d/%s", v.uploadBucket, owner.ID, item.Name)
		if err := validateDestination(item.Destination); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		validated = append(validated, item)
	}

	return validated, nil
}

// resolveOwner applies the ownership rule: an item without an explicit owner
// belongs to the requester, and only admins may create transfers on another
// user's behalf.
func (v *Validator) resolveOwner(requester *model.User, explicitOwner int) (*model.User, error) {
	if explicitOwner == 0 || explicitOwner == requester.ID {
		return requester, nil
	}

	if !requester.IsAdmin {
		return nil, fmt.Errorf("%w: user %d cannot transfer on behalf of user %d", ErrOwnershipViolation, requester.ID, explicitOwner)
	}

	owner, err := v.stors.UserStor.GetUserByID(explicitOwner)
	if err != nil {
		return nil, fmt.Errorf("%w: no such owner %d", ErrOwnershipViolation, explicitOwner)
	}

	return owner, nil
}

func validateDestination(destination string) error {
	if !utf8.ValidString(destination) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidDestinationName)
	}

	if n := len(destination); n < minDestinationBytes || n > maxDestinationBytes {
		return fmt.Errorf("%w: %d bytes, must be between %d and %d", ErrInvalidDestinationName, n, minDestinationBytes, maxDestinationBytes)
	}

	return nil
}

// ValidateDownloadRequest resolves and authorizes every requested resource.
// A resource that does not exist, is inactive, or belongs to someone else
// fails the whole request; a requester only learns that the id was not
// transferable, not which of those reasons applied.
func (v *Validator) ValidateDownloadRequest(requester *model.User, resourceIDs []int, accessToken string) ([]DownloadItem, error) {
	if len(resourceIDs) == 0 {
		return nil, ErrNoTransferableItems
	}

	items := make([]DownloadItem, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		resource, err := v.stors.ResourceStor.GetResourceByID(resourceID)
		if err != nil {
			return nil, fmt.Errorf("%w: resource %d", ErrUnauthorizedOrInactiveResource, resourceID)
		}

		if !resource.IsActive {
			return nil, fmt.Errorf("%w: resource %d", ErrUnauthorizedOrInactiveResource, resourceID)
		}

		if resource.OwnerID != requester.ID && !requester.IsAdmin {
			return nil, fmt.Errorf("%w: resource %d", ErrUnauthorizedOrInactiveResource, resourceID)
		}

		items = append(items, DownloadItem{
			ResourceID:   resource.ID,
			OriginatorID: requester.ID,
			Path:         resource.Path,
			SizeInBytes:  resource.Size,
			AccessToken:  accessToken,
		})
	}

	return items, nil
}
