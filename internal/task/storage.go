package task

import (
	"context"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser"
)

// Storage scripts take the storage area name and key as bound arguments.
const (
	storageGetItemScript = `(area, key) => window[area].getItem(key)`
	storageItemsScript   = `(area) => {
	const s = window[area];
	const items = {};
	for (let i = 0; i < s.length; i++) {
		const k = s.key(i);
		items[k] = s.getItem(k);
	}
	return items;
}`
	storageSetItemScript    = `(area, key, value) => { window[area].setItem(key, value); }`
	storageRemoveItemScript = `(area, key) => { window[area].removeItem(key); }`
	storageClearScript      = `(area) => { window[area].clear(); }`
)

func (e *Executor) handleGetStorage(ctx context.Context, page browser.Page, p *schemas.GetStorageParams) (map[string]interface{}, error) {
	area := string(p.StorageType)
	if p.StorageKey != "" {
		v, err := page.Evaluate(ctx, storageGetItemScript, area, p.StorageKey)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"value": v}, nil
	}

	items, err := page.Evaluate(ctx, storageItemsScript, area)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = map[string]interface{}{}
	}
	return map[string]interface{}{"items": items}, nil
}

func (e *Executor) handleSetStorage(ctx context.Context, page browser.Page, p *schemas.SetStorageParams) (map[string]interface{}, error) {
	if _, err := page.Evaluate(ctx, storageSetItemScript, string(p.StorageType), p.StorageKey, p.Value()); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleDeleteStorage(ctx context.Context, page browser.Page, p *schemas.DeleteStorageParams) (map[string]interface{}, error) {
	if p.StorageKey != "" {
		if _, err := page.Evaluate(ctx, storageRemoveItemScript, string(p.StorageType), p.StorageKey); err != nil {
			return nil, err
		}
	}
	return succeeded(), nil
}

func (e *Executor) handleClearStorage(ctx context.Context, page browser.Page, p *schemas.ClearStorageParams) (map[string]interface{}, error) {
	if _, err := page.Evaluate(ctx, storageClearScript, string(p.StorageType)); err != nil {
		return nil, err
	}
	return succeeded(), nil
}
