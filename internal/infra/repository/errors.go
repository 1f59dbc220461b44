package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
)

const (
	pgForeignKeyViolation    = "23503"
	mysqlForeignKeyViolation = 1452
)

// classify turns driver foreign-key violations (unknown client, pet, service
// or staff) into a business error; anything else passes through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	invalidRef := httperr.ErrBusiness(httperr.CodeInvalidReference)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", invalidRef, pgErr.ConstraintName)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlForeignKeyViolation {
		return fmt.Errorf("%w: %s", invalidRef, myErr.Message)
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", invalidRef, err)
	}

	return err
}
