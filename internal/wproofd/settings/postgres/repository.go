// Package postgres stores overlay settings in PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/wrale/wrale-proof/internal/wproofd/database"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

const settingsRowID = 1

type repository struct {
	db *sql.DB
}

var _ settings.Repository = (*repository)(nil)

// NewRepository creates a settings repository on db
func NewRepository(db *sql.DB) settings.Repository {
	return &repository{db: db}
}

func (r *repository) Load(ctx context.Context) (*settings.Settings, error) {
	const op = "SettingsRepository.Load"

	var out settings.Settings
	err := database.RunInTx(ctx, r.db, &database.TxOptions{ReadOnly: true}, func(tx *database.Tx) error {
		if err := loadRotation(ctx, tx, &out); err != nil {
			return err
		}
		if err := loadGroups(ctx, tx, &out); err != nil {
			return err
		}
		return loadItems(ctx, tx, &out)
	})
	if err != nil {
		return nil, database.MapError(err, op)
	}

	return &out, nil
}

func (r *repository) Save(ctx context.Context, s settings.Settings) error {
	const op = "SettingsRepository.Save"

	opts := &database.TxOptions{Isolation: sql.LevelSerializable}
	err := database.RunInTx(ctx, r.db, opts, func(tx *database.Tx) error {
		if err := saveRotation(ctx, tx, s); err != nil {
			return err
		}

		// Items and groups are replaced wholesale; ids are carried by the rows
		if _, err := tx.Builder().Delete("content_items").ExecContext(ctx); err != nil {
			return err
		}
		if _, err := tx.Builder().Delete("display_groups").ExecContext(ctx); err != nil {
			return err
		}

		if len(s.Groups) > 0 {
			insert := tx.Builder().
				Insert("display_groups").
				Columns("id", "position", "name", "description")
			for i, g := range s.Groups {
				insert = insert.Values(g.ID, i, g.Name, g.Description)
			}
			if _, err := insert.ExecContext(ctx); err != nil {
				return err
			}
		}

		if len(s.Items) > 0 {
			insert := tx.Builder().
				Insert("content_items").
				Columns("id", "position", "type", "content", "author", "url", "target", "cta", "active", "groups")
			for i, item := range s.Items {
				insert = insert.Values(
					item.ID, i, string(item.Type), item.Content, item.Author,
					item.URL, string(item.LinkTarget()), item.CTA, item.Active,
					pq.StringArray(groupStrings(item.Groups)),
				)
			}
			if _, err := insert.ExecContext(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	return database.MapError(err, op)
}

func loadRotation(ctx context.Context, tx *database.Tx, out *settings.Settings) error {
	var (
		delay, duration, interval  int64
		position, animation, theme string
		bg, text, border           sql.NullString
		borderWidth                sql.NullInt64
	)

	err := tx.Builder().
		Select("enabled", "delay_ms", "duration_ms", "interval_ms", "position", "animation", "theme",
			"custom_background", "custom_text", "custom_border", "custom_border_width").
		From("overlay_settings").
		Where(sq.Eq{"id": settingsRowID}).
		QueryRowContext(ctx).
		Scan(&out.Enabled, &delay, &duration, &interval, &position, &animation, &theme,
			&bg, &text, &border, &borderWidth)
	if err != nil {
		return err
	}

	out.Rotation = overlay.RotationConfig{
		Delay:     time.Duration(delay) * time.Millisecond,
		Duration:  time.Duration(duration) * time.Millisecond,
		Interval:  time.Duration(interval) * time.Millisecond,
		Position:  overlay.Position(position),
		Animation: overlay.Animation(animation),
		Theme:     overlay.Theme(theme),
	}
	if bg.Valid {
		out.Rotation.CustomColors = &overlay.CustomColors{
			Background:  bg.String,
			Text:        text.String,
			Border:      border.String,
			BorderWidth: int(borderWidth.Int64),
		}
	}
	return nil
}

func saveRotation(ctx context.Context, tx *database.Tx, s settings.Settings) error {
	rot := s.Rotation
	var bg, text, border sql.NullString
	var borderWidth sql.NullInt64
	if c := rot.CustomColors; c != nil {
		bg = sql.NullString{String: c.Background, Valid: true}
		text = sql.NullString{String: c.Text, Valid: true}
		border = sql.NullString{String: c.Border, Valid: true}
		borderWidth = sql.NullInt64{Int64: int64(c.BorderWidth), Valid: true}
	}

	_, err := tx.Builder().
		Insert("overlay_settings").
		Columns("id", "enabled", "delay_ms", "duration_ms", "interval_ms", "position", "animation", "theme",
			"custom_background", "custom_text", "custom_border", "custom_border_width").
		Values(settingsRowID, s.Enabled, rot.Delay.Milliseconds(), rot.Duration.Milliseconds(),
			rot.Interval.Milliseconds(), string(rot.Position), string(rot.Animation), string(rot.Theme),
			bg, text, border, borderWidth).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			delay_ms = EXCLUDED.delay_ms,
			duration_ms = EXCLUDED.duration_ms,
			interval_ms = EXCLUDED.interval_ms,
			position = EXCLUDED.position,
			animation = EXCLUDED.animation,
			theme = EXCLUDED.theme,
			custom_background = EXCLUDED.custom_background,
			custom_text = EXCLUDED.custom_text,
			custom_border = EXCLUDED.custom_border,
			custom_border_width = EXCLUDED.custom_border_width,
			updated_at = NOW()`).
		ExecContext(ctx)
	return err
}

func loadGroups(ctx context.Context, tx *database.Tx, out *settings.Settings) error {
	rows, err := tx.Builder().
		Select("id", "name", "description").
		From("display_groups").
		OrderBy("position").
		QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g overlay.DisplayGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return err
		}
		out.Groups = append(out.Groups, g)
	}
	return rows.Err()
}

func loadItems(ctx context.Context, tx *database.Tx, out *settings.Settings) error {
	rows, err := tx.Builder().
		Select("id", "type", "content", "author", "url", "target", "cta", "active", "groups").
		From("content_items").
		OrderBy("position").
		QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item        overlay.ContentItem
			typ, target string
			groups      pq.StringArray
		)
		if err := rows.Scan(&item.ID, &typ, &item.Content, &item.Author, &item.URL,
			&target, &item.CTA, &item.Active, &groups); err != nil {
			return err
		}
		item.Type = overlay.ItemType(typ)
		item.Target = overlay.Target(target)
		for _, g := range groups {
			item.Groups = append(item.Groups, overlay.GroupID(g))
		}
		out.Items = append(out.Items, item)
	}
	return rows.Err()
}

func groupStrings(groups []overlay.GroupID) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = string(g)
	}
	return out
}
