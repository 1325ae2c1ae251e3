package data

import (
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trial_radar/app/history/internal/conf"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/config"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/storage"
)

type Data struct {
	store *storage.Storage
}

// NewData 打开 trial_radar 写入的历史数据库
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	if c == nil || c.Database == nil {
		return nil, nil, errors.New("data.database is required")
	}
	db := c.Database
	store, err := storage.NewStorage(config.DBConfig{
		Driver:   db.Driver,
		Host:     db.Host,
		Port:     int(db.Port),
		User:     db.User,
		Password: db.Password,
		Name:     db.Name,
		Path:     db.Path,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		if err := store.Close(); err != nil {
			log.NewHelper(logger).Error(err)
		}
	}
	return &Data{store: store}, cleanup, nil
}
