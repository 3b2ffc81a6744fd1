package models

import (
	"log"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Material{}, &Color{}, &Product{},
		&Supplier{},
		&Purchase{}, &PurchaseLine{},
		&History{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
