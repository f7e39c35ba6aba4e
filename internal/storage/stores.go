package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vitrinelabs/vitrine/internal/storefront"
)

// ErrNotFound is returned when a store lookup misses.
var ErrNotFound = errors.New("store not found")

// SaveStore inserts or updates a store row.
func (d *DB) SaveStore(s storefront.Store) error {
	_, err := d.Exec(`
		INSERT INTO stores (id, owner_id, slug, name, logo_url, primary_color, whatsapp, about)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			slug = excluded.slug,
			name = excluded.name,
			logo_url = excluded.logo_url,
			primary_color = excluded.primary_color,
			whatsapp = excluded.whatsapp,
			about = excluded.about,
			updated_at = CURRENT_TIMESTAMP
	`, s.ID, s.OwnerID, s.Slug, s.Name, s.LogoURL, s.PrimaryColor, s.WhatsApp, s.About)
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

func scanStore(row *sql.Row) (storefront.Store, error) {
	var s storefront.Store
	err := row.Scan(&s.ID, &s.OwnerID, &s.Slug, &s.Name, &s.LogoURL, &s.PrimaryColor, &s.WhatsApp, &s.About)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, fmt.Errorf("scan store: %w", err)
	}
	return s, nil
}

const storeColumns = "id, owner_id, slug, name, logo_url, primary_color, whatsapp, about"

// StoreByID loads one store.
func (d *DB) StoreByID(id string) (storefront.Store, error) {
	return scanStore(d.QueryRow("SELECT "+storeColumns+" FROM stores WHERE id = ?", id))
}

// StoreBySlug loads the store behind a public storefront URL.
func (d *DB) StoreBySlug(slug string) (storefront.Store, error) {
	return scanStore(d.QueryRow("SELECT "+storeColumns+" FROM stores WHERE slug = ?", slug))
}

// StoresByOwner lists an actor's stores.
func (d *DB) StoresByOwner(ownerID string) ([]storefront.Store, error) {
	rows, err := d.Query("SELECT "+storeColumns+" FROM stores WHERE owner_id = ? ORDER BY name", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var out []storefront.Store
	for rows.Next() {
		var s storefront.Store
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Slug, &s.Name, &s.LogoURL, &s.PrimaryColor, &s.WhatsApp, &s.About); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadSettings loads a store's theme settings, falling back to defaults
// when none were saved yet.
func (d *DB) LoadSettings(storeID string) (storefront.Settings, error) {
	var raw string
	err := d.QueryRow("SELECT settings FROM store_settings WHERE store_id = ?", storeID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return storefront.DefaultSettings(storeID), nil
	}
	if err != nil {
		return storefront.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	s := storefront.DefaultSettings(storeID)
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return storefront.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s.StoreID = storeID
	return s, nil
}

// SaveSettings writes a store's theme settings.
func (d *DB) SaveSettings(s storefront.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if _, err := d.Exec(`
		INSERT INTO store_settings (store_id, settings) VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET settings = excluded.settings
	`, s.StoreID, string(raw)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadData assembles everything the renderer needs for one store.
func (d *DB) LoadData(storeID string) (storefront.Data, error) {
	store, err := d.StoreByID(storeID)
	if err != nil {
		return storefront.Data{}, err
	}
	settings, err := d.LoadSettings(storeID)
	if err != nil {
		return storefront.Data{}, err
	}

	data := storefront.Data{Store: store, Settings: settings}

	rows, err := d.Query(`
		SELECT id, text, icon, link_url, bg_color, text_color, is_active, position
		FROM announcements WHERE store_id = ? ORDER BY position
	`, storeID)
	if err != nil {
		return storefront.Data{}, fmt.Errorf("load announcements: %w", err)
	}
	for rows.Next() {
		a := storefront.Announcement{StoreID: storeID}
		if err := rows.Scan(&a.ID, &a.Text, &a.Icon, &a.LinkURL, &a.BackgroundColor, &a.TextColor, &a.IsActive, &a.OrderIndex); err != nil {
			rows.Close()
			return storefront.Data{}, fmt.Errorf("scan announcement: %w", err)
		}
		data.Announcements = append(data.Announcements, a)
	}
	rows.Close()

	rows, err = d.Query(`
		SELECT id, title, image_url, link_url, is_active, position
		FROM banners WHERE store_id = ? ORDER BY position
	`, storeID)
	if err != nil {
		return storefront.Data{}, fmt.Errorf("load banners: %w", err)
	}
	for rows.Next() {
		b := storefront.Banner{StoreID: storeID}
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.IsActive, &b.OrderIndex); err != nil {
			rows.Close()
			return storefront.Data{}, fmt.Errorf("scan banner: %w", err)
		}
		data.Banners = append(data.Banners, b)
	}
	rows.Close()

	rows, err = d.Query(`
		SELECT id, name, is_active, position
		FROM categories WHERE store_id = ? ORDER BY position
	`, storeID)
	if err != nil {
		return storefront.Data{}, fmt.Errorf("load categories: %w", err)
	}
	for rows.Next() {
		c := storefront.Category{StoreID: storeID}
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.OrderIndex); err != nil {
			rows.Close()
			return storefront.Data{}, fmt.Errorf("scan category: %w", err)
		}
		data.Categories = append(data.Categories, c)
	}
	rows.Close()

	rows, err = d.Query(`
		SELECT id, category_id, name, description, price, image_url, is_active, is_featured, position
		FROM products WHERE store_id = ? ORDER BY position
	`, storeID)
	if err != nil {
		return storefront.Data{}, fmt.Errorf("load products: %w", err)
	}
	for rows.Next() {
		p := storefront.Product{StoreID: storeID}
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.IsActive, &p.IsFeatured, &p.OrderIndex); err != nil {
			rows.Close()
			return storefront.Data{}, fmt.Errorf("scan product: %w", err)
		}
		data.Products = append(data.Products, p)
	}
	rows.Close()

	return data, nil
}

// Publish writes a full working copy in one transaction: the store row,
// its settings, and each collection replaced wholesale. This is the
// persistence side of the editor's publish button.
func (d *DB) Publish(ctx context.Context, data storefront.Data) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}
	defer tx.Rollback()

	s := data.Store
	if _, err := tx.Exec(`
		INSERT INTO stores (id, owner_id, slug, name, logo_url, primary_color, whatsapp, about)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			slug = excluded.slug,
			name = excluded.name,
			logo_url = excluded.logo_url,
			primary_color = excluded.primary_color,
			whatsapp = excluded.whatsapp,
			about = excluded.about,
			updated_at = CURRENT_TIMESTAMP
	`, s.ID, s.OwnerID, s.Slug, s.Name, s.LogoURL, s.PrimaryColor, s.WhatsApp, s.About); err != nil {
		return fmt.Errorf("publish store: %w", err)
	}

	raw, err := json.Marshal(data.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO store_settings (store_id, settings) VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET settings = excluded.settings
	`, s.ID, string(raw)); err != nil {
		return fmt.Errorf("publish settings: %w", err)
	}

	for _, table := range []string{"announcements", "banners", "categories", "products"} {
		if !validIdent(table) {
			return fmt.Errorf("invalid table name: %s", table)
		}
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE store_id = ?", table), s.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, a := range data.Announcements {
		if _, err := tx.Exec(`
			INSERT INTO announcements (id, store_id, text, icon, link_url, bg_color, text_color, is_active, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, s.ID, a.Text, a.Icon, a.LinkURL, a.BackgroundColor, a.TextColor, a.IsActive, i); err != nil {
			return fmt.Errorf("publish announcement: %w", err)
		}
	}
	for i, b := range data.Banners {
		if _, err := tx.Exec(`
			INSERT INTO banners (id, store_id, title, image_url, link_url, is_active, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, b.ID, s.ID, b.Title, b.ImageURL, b.LinkURL, b.IsActive, i); err != nil {
			return fmt.Errorf("publish banner: %w", err)
		}
	}
	for i, c := range data.Categories {
		if _, err := tx.Exec(`
			INSERT INTO categories (id, store_id, name, is_active, position)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, s.ID, c.Name, c.IsActive, i); err != nil {
			return fmt.Errorf("publish category: %w", err)
		}
	}
	for i, p := range data.Products {
		if _, err := tx.Exec(`
			INSERT INTO products (id, store_id, category_id, name, description, price, image_url, is_active, is_featured, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, s.ID, p.CategoryID, p.Name, p.Description, p.Price, p.ImageURL, p.IsActive, p.IsFeatured, i); err != nil {
			return fmt.Errorf("publish product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publish: %w", err)
	}
	return nil
}
