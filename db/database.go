package db

import "gorm.io/gorm"

type Database interface {
	GetDB() *gorm.DB
	// Transaction runs fn against a Database bound to a single transaction.
	// A non-nil error from fn rolls every write back.
	Transaction(fn func(tx Database) error) error
	Close() error
}

type GormDatabase struct {
	DB *gorm.DB
}

func (g *GormDatabase) GetDB() *gorm.DB { return g.DB }

func (g *GormDatabase) Transaction(fn func(tx Database) error) error {
	return g.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&GormDatabase{DB: tx})
	})
}

func (g *GormDatabase) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
