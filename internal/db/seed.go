package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/fieldcrypt"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

// SeedDemo inserts one client, pet, service and veterinarian with their
// display columns encrypted. It does nothing when clients already exist and
// reports whether it wrote.
func SeedDemo(ctx context.Context, db *gorm.DB, enc fieldcrypt.Encrypter) (bool, error) {
	var clients int64
	if err := db.WithContext(ctx).Model(&models.Client{}).Count(&clients).Error; err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if clients > 0 {
		return false, nil
	}

	var encErr error
	e := func(v string) string {
		out, err := enc.Encrypt(v)
		if err != nil && encErr == nil {
			encErr = err
		}
		return out
	}

	client := models.Client{Name: e("María Torres"), IDNumber: e("0102030405"), Phone: "0991234567"}
	service := models.Service{Name: e("Consulta general"), Price: 25, DurationMin: 30, Active: true}
	vet := models.Staff{Name: e("Dr. Andrés Cevallos"), Email: "acevallos@clinica.test", Role: "vet"}
	if encErr != nil {
		return false, fmt.Errorf("seed: %w", encErr)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, v := range []any{&client, &service, &vet} {
			if err := tx.Create(v).Error; err != nil {
				return err
			}
		}

		pet := models.Pet{ClientID: client.ID, Name: e("Rocky"), Species: e("Perro")}
		if encErr != nil {
			return encErr
		}
		return tx.Create(&pet).Error
	})
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	return true, nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
