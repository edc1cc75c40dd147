package inventory

import (
	"context"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/inventory/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

const (
	collectionMaterials = "materials"
	collectionPrinters  = "printers"
)

// Repository persists materials and printers in the document store, keyed
// by entity id.
type Repository struct {
	store docstore.Store
}

// NewRepository wraps the document store for inventory access.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func materialPred(fn func(model.Material) bool) docstore.Predicate {
	return func(doc docstore.Document) bool {
		var m model.Material
		if docstore.Decode(doc, &m) != nil {
			return false
		}
		return fn(m)
	}
}

func printerPred(fn func(model.Printer) bool) docstore.Predicate {
	return func(doc docstore.Document) bool {
		var p model.Printer
		if docstore.Decode(doc, &p) != nil {
			return false
		}
		return fn(p)
	}
}

// GetMaterial returns a material and its storage revision.
func (r *Repository) GetMaterial(ctx context.Context, id string) (model.Material, int64, error) {
	doc, err := r.store.Get(ctx, collectionMaterials, id)
	if err != nil {
		return model.Material{}, 0, err
	}
	var m model.Material
	if err := docstore.Decode(doc, &m); err != nil {
		return model.Material{}, 0, platformerrors.Wrap(
			platformerrors.KindStorage, "inventory.repo.get_material", "decode failed", err)
	}
	return m, doc.Rev, nil
}

// FindMaterials returns materials matching the filter in stable key order.
func (r *Repository) FindMaterials(ctx context.Context, fn func(model.Material) bool) ([]model.Material, error) {
	docs, err := r.store.FindMany(ctx, collectionMaterials, materialPred(fn))
	if err != nil {
		return nil, err
	}
	materials := make([]model.Material, 0, len(docs))
	for _, doc := range docs {
		var m model.Material
		if err := docstore.Decode(doc, &m); err != nil {
			return nil, platformerrors.Wrap(
				platformerrors.KindStorage, "inventory.repo.find_materials", "decode failed", err)
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// InsertMaterial stores a new material.
func (r *Repository) InsertMaterial(ctx context.Context, m model.Material) error {
	data, err := docstore.Encode(m)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindStorage, "inventory.repo.insert_material", "encode failed", err)
	}
	_, err = r.store.Insert(ctx, collectionMaterials, m.ID, data)
	return err
}

// ReplaceMaterial rewrites a material only when its revision still matches.
func (r *Repository) ReplaceMaterial(ctx context.Context, m model.Material, expectedRev int64) error {
	data, err := docstore.Encode(m)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindStorage, "inventory.repo.replace_material", "encode failed", err)
	}
	_, err = r.store.ReplaceIf(ctx, collectionMaterials, m.ID, data, expectedRev)
	return err
}

// DeleteMaterialsByName removes every material with the given name and
// reports how many were deleted.
func (r *Repository) DeleteMaterialsByName(ctx context.Context, name string) (int64, error) {
	return r.store.Delete(ctx, collectionMaterials, materialPred(func(m model.Material) bool {
		return m.Name == name
	}))
}

// GetPrinter returns a printer and its storage revision.
func (r *Repository) GetPrinter(ctx context.Context, id string) (model.Printer, int64, error) {
	doc, err := r.store.Get(ctx, collectionPrinters, id)
	if err != nil {
		return model.Printer{}, 0, err
	}
	var p model.Printer
	if err := docstore.Decode(doc, &p); err != nil {
		return model.Printer{}, 0, platformerrors.Wrap(
			platformerrors.KindStorage, "inventory.repo.get_printer", "decode failed", err)
	}
	return p, doc.Rev, nil
}

// FindPrinters returns printers matching the filter in stable key order.
func (r *Repository) FindPrinters(ctx context.Context, fn func(model.Printer) bool) ([]model.Printer, error) {
	docs, err := r.store.FindMany(ctx, collectionPrinters, printerPred(fn))
	if err != nil {
		return nil, err
	}
	printers := make([]model.Printer, 0, len(docs))
	for _, doc := range docs {
		var p model.Printer
		if err := docstore.Decode(doc, &p); err != nil {
			return nil, platformerrors.Wrap(
				platformerrors.KindStorage, "inventory.repo.find_printers", "decode failed", err)
		}
		printers = append(printers, p)
	}
	return printers, nil
}

// InsertPrinter stores a new printer.
func (r *Repository) InsertPrinter(ctx context.Context, p model.Printer) error {
	data, err := docstore.Encode(p)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindStorage, "inventory.repo.insert_printer", "encode failed", err)
	}
	_, err = r.store.Insert(ctx, collectionPrinters, p.ID, data)
	return err
}

// ReplacePrinter rewrites a printer only when its revision still matches.
func (r *Repository) ReplacePrinter(ctx context.Context, p model.Printer, expectedRev int64) error {
	data, err := docstore.Encode(p)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindStorage, "inventory.repo.replace_printer", "encode failed", err)
	}
	_, err = r.store.ReplaceIf(ctx, collectionPrinters, p.ID, data, expectedRev)
	return err
}

// DeletePrinter removes a printer, reporting whether it existed.
func (r *Repository) DeletePrinter(ctx context.Context, id string) (bool, error) {
	deleted, err := r.store.Delete(ctx, collectionPrinters, func(doc docstore.Document) bool {
		return doc.Key == id
	})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
