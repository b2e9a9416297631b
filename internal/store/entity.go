package store

import "sofra/internal/model"

// Entity selects one of the three translated menu tables. The translation
// and fallback queries are built from its spec instead of being repeated
// per table.
type Entity int

// Translated entities.
const (
	EntityMenuType Entity = iota
	EntityCategory
	EntityMenuItem
)

type entitySpec struct {
	table       string
	trTable     string
	fkColumn    string
	placeholder string
}

var entitySpecs = map[Entity]entitySpec{
	EntityMenuType: {
		table:       "menu_types",
		trTable:     "menu_type_translations",
		fkColumn:    "menu_type_id",
		placeholder: model.PlaceholderMenuType,
	},
	EntityCategory: {
		table:       "categories",
		trTable:     "category_translations",
		fkColumn:    "category_id",
		placeholder: model.PlaceholderCategory,
	},
	EntityMenuItem: {
		table:       "menu_items",
		trTable:     "menu_item_translations",
		fkColumn:    "menu_item_id",
		placeholder: model.PlaceholderItem,
	},
}

func (e Entity) spec() entitySpec {
	return entitySpecs[e]
}

// String returns the entity's base table name.
func (e Entity) String() string {
	return e.spec().table
}
