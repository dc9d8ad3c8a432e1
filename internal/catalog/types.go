package catalog

// Kind classifies a catalog object returned by the POS provider.
type Kind string

const (
	KindItem          Kind = "ITEM"
	KindItemVariation Kind = "ITEM_VARIATION"
	KindCategory      Kind = "CATEGORY"
	KindModifier      Kind = "MODIFIER"
	KindModifierList  Kind = "MODIFIER_LIST"
)

// Item is the validated, engine-facing view of a provider catalog object.
// For modifier lists the name may carry the ingredient marker prefix and the
// description may carry allergen hints.
type Item struct {
	ID                    string
	Kind                  Kind
	Name                  string
	Description           string
	LinkedModifierListIDs []string
}

// Credentials carries the owner's provider access token.
type Credentials struct {
	AccessToken string
}

// Wire types for the provider's list endpoint.

type listResponse struct {
	Objects []catalogObject `json:"objects"`
	Cursor  string          `json:"cursor"`
	Errors  []providerError `json:"errors"`
}

type catalogObject struct {
	ID               string            `json:"id"`
	Type             string            `json:"type"`
	ItemData         *itemData         `json:"item_data,omitempty"`
	ModifierListData *modifierListData `json:"modifier_list_data,omitempty"`
}

type itemData struct {
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	ModifierListInfo []modifierListInfo `json:"modifier_list_info"`
}

type modifierListInfo struct {
	ModifierListID string `json:"modifier_list_id"`
}

type modifierListData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type providerError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// toItem converts a wire object into the engine-facing shape. Objects with no
// usable payload map to an Item carrying only ID and Kind; the planner
// ignores kinds it has no rules for.
func (o catalogObject) toItem() Item {
	item := Item{ID: o.ID, Kind: Kind(o.Type)}
	switch {
	case o.ItemData != nil:
		item.Name = o.ItemData.Name
		item.Description = o.ItemData.Description
		for _, info := range o.ItemData.ModifierListInfo {
			if info.ModifierListID != "" {
				item.LinkedModifierListIDs = append(item.LinkedModifierListIDs, info.ModifierListID)
			}
		}
	case o.ModifierListData != nil:
		item.Name = o.ModifierListData.Name
		item.Description = o.ModifierListData.Description
	}
	return item
}
