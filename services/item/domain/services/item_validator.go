// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/mall/services/item/domain"
	"github.com/ghuser/mall/services/item/domain/models"
)

const maxImagesPerItem = 20

// ValidateName enforces business rules for ItemName beyond the length checks
// done by NewItemName:
//   - no leading or trailing whitespace
//   - no control characters
//   - no consecutive spaces
func ValidateName(name models.ItemName) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("item name must not be only whitespace")
	}

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("item name must not have leading or trailing whitespace")
	}

	if strings.ContainsFunc(s, unicode.IsControl) {
		return fmt.Errorf("item name must not contain control characters")
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("item name must not contain consecutive spaces")
	}

	return nil
}

// ValidateImages checks that every image reference is an absolute http(s) URL
// or a relative object key, and that there are not too many of them.
func ValidateImages(images []string) error {
	if len(images) > maxImagesPerItem {
		return fmt.Errorf("at most %d images allowed (got %d)", maxImagesPerItem, len(images))
	}
	for i, img := range images {
		if strings.TrimSpace(img) == "" {
			return fmt.Errorf("image %d is empty", i)
		}
		u, err := url.Parse(img)
		if err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
		if u.IsAbs() && u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("image %d: unsupported scheme %q", i, u.Scheme)
		}
	}
	return nil
}

// ValidateItemForCreation performs cross-field validation on an Item built by
// models.NewItem before it is persisted. Each failure wraps the item domain
// sentinel of the offending field.
func ValidateItemForCreation(item *models.Item) error {
	if item == nil || item.ID == uuid.Nil {
		return fmt.Errorf("%w: id must be set", itemdomain.ErrInvalidItemID)
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}

	if _, err := models.ParseItemType(item.Type.String()); err != nil {
		return fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemType, err)
	}

	if err := ValidateImages(item.Images); err != nil {
		return fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemImages, err)
	}

	return nil
}
