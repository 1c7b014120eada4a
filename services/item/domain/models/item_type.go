package models

import "fmt"

// ItemType is the catalogue category of an Item.
type ItemType string

const (
	ItemTypeFunctionalFood ItemType = "functional_food"
	ItemTypeOTC            ItemType = "otc"
	ItemTypeEtc            ItemType = "etc"
	ItemTypeMedicalDevice  ItemType = "medical_device"
	ItemTypeBase           ItemType = "base"
)

// ParseItemType maps a wire value to an ItemType.
func ParseItemType(s string) (ItemType, error) {
	switch t := ItemType(s); t {
	case ItemTypeFunctionalFood, ItemTypeOTC, ItemTypeEtc, ItemTypeMedicalDevice, ItemTypeBase:
		return t, nil
	default:
		return "", fmt.Errorf("unknown item type %q", s)
	}
}

func (t ItemType) String() string {
	return string(t)
}
