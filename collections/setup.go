package collections

import (
	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the estimates, estimate_items and
// estimate_overheads collections exist.
func Setup(app *pocketbase.PocketBase) {
	estimates := ensureCollection(app, "estimates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "location", Required: false})
		c.Fields.Add(&core.TextField{Name: "term", Required: false})
		c.Fields.Add(&core.TextField{Name: "expiry", Required: false})
		c.Fields.Add(&core.TextField{Name: "date", Required: false})
		c.Fields.Add(&core.NumberField{Name: "tax_rate", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "estimate_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "estimate",
			Required:      true,
			CollectionId:  estimates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_key", Required: false})
		c.Fields.Add(&core.TextField{Name: "l1", Required: false})
		c.Fields.Add(&core.TextField{Name: "l2", Required: false})
		c.Fields.Add(&core.TextField{Name: "l3", Required: false})
		c.Fields.Add(&core.TextField{Name: "l4", Required: false})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "spec", Required: false})
		c.Fields.Add(&core.NumberField{Name: "qty", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.NumberField{Name: "cost_price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "amount", Required: false})
		c.Fields.Add(&core.TextField{Name: "remark", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	ensureCollection(app, "estimate_overheads", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "estimate",
			Required:      true,
			CollectionId:  estimates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "rate", Required: false})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Debug("collection already exists, skipping creation", "name", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatal("failed to create collection", "name", name, "err", err)
	}

	log.Info("created collection", "name", name, "id", collection.Id)
	return collection
}
