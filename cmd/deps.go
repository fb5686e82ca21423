package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/FintorAI/LG-RackandStack/internal/model"
	"github.com/FintorAI/LG-RackandStack/internal/store"
	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

// initStore opens the run-history database configured in cfg.
func initStore() (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return st, nil
}

// initESFuse builds the ESFuse API client from config.
func initESFuse() (esfuse.Client, error) {
	if cfg.ESFuse.BaseURL == "" {
		return nil, eris.New("esfuse.base_url is required (RACKSTACK_ESFUSE_BASE_URL)")
	}
	if cfg.ESFuse.Token == "" {
		return nil, eris.New("esfuse.token is required (RACKSTACK_ESFUSE_TOKEN)")
	}
	return esfuse.NewClient(cfg.ESFuse.BaseURL, cfg.ESFuse.Token,
		esfuse.WithTimeout(time.Duration(cfg.ESFuse.TimeoutSecs)*time.Second),
		esfuse.WithRateLimit(cfg.ESFuse.RateLimit, cfg.ESFuse.RateBurst),
	), nil
}

// loadFieldTable loads the attribute-to-field-code table, falling back to
// the built-in Encompass table when no file is configured.
func loadFieldTable() (*model.FieldTable, error) {
	if cfg.Fields.TablePath == "" {
		return model.DefaultFieldTable(), nil
	}
	table, err := model.LoadFieldTable(cfg.Fields.TablePath)
	if err != nil {
		return nil, eris.Wrap(err, "load field table")
	}
	zap.L().Info("field table loaded",
		zap.String("path", cfg.Fields.TablePath),
		zap.Int("entries", table.Len()),
	)
	return table, nil
}
