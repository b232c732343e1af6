package aiassist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Owners of default and forced preferences in egw_preferences.
const (
	prefOwnerDefault = -2
	prefOwnerForced  = -1
)

const defaultUILanguage = "en"

// repo reads configuration, languages and preferences from the groupware database.
type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) AppConfig(ctx context.Context, app string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT config_name, config_value
		FROM egw_config
		WHERE config_app = $1
	`, app)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name string
		var value sql.NullString
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value.String
	}
	return out, rows.Err()
}

func (r *repo) InstalledLanguages(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.lang_id, l.lang_name
		FROM egw_languages l
		WHERE l.lang_id IN (SELECT DISTINCT lang FROM egw_lang)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, err
		}
		out[normalizeLang(code)] = name
	}
	return out, rows.Err()
}

// Preferences merges default, user and forced preferences, in that order.
func (r *repo) Preferences(ctx context.Context, accountID int) (Preferences, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT preference_owner, preference_app, preference_value
		FROM egw_preferences
		WHERE preference_owner IN ($1, $2, $3)
		  AND preference_app IN ('common', $4)
	`, prefOwnerDefault, accountID, prefOwnerForced, AppName)
	if err != nil {
		return Preferences{}, err
	}
	defer rows.Close()

	layers := map[int]map[string]map[string]any{}
	for rows.Next() {
		var owner int
		var app string
		var raw sql.NullString
		if err := rows.Scan(&owner, &app, &raw); err != nil {
			return Preferences{}, err
		}
		if !raw.Valid || raw.String == "" {
			continue
		}
		values := map[string]any{}
		if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
			return Preferences{}, fmt.Errorf("decode preferences of owner %d app %s: %w", owner, app, err)
		}
		if layers[owner] == nil {
			layers[owner] = map[string]map[string]any{}
		}
		layers[owner][app] = values
	}
	if err := rows.Err(); err != nil {
		return Preferences{}, err
	}

	return mergePreferences(layers, accountID), nil
}

// mergePreferences applies the layers default, user, forced; later layers win.
func mergePreferences(layers map[int]map[string]map[string]any, accountID int) Preferences {
	p := Preferences{UILanguage: defaultUILanguage}
	for _, owner := range []int{prefOwnerDefault, accountID, prefOwnerForced} {
		layer := layers[owner]
		if lang, ok := layer["common"]["lang"].(string); ok && strings.TrimSpace(lang) != "" {
			p.UILanguage = normalizeLang(lang)
		}
		if langs := stringList(layer[AppName]["translation_languages"]); len(langs) > 0 {
			p.TranslationLanguages = langs
		}
	}
	return p
}

// stringList accepts a JSON array or a comma separated string.
func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}
