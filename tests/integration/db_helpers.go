package integration

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/repositories"
	"github.com/MarchChawut/ems-trd-dtc-sub000/pkg/auth"
)

// TestDB manages PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("ems"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*1000),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbWrapper := &database.DB{
		Pool: pool,
	}

	// Migrations are embedded in the database package, so the test schema
	// is always exactly what production runs
	if err := dbWrapper.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         dbWrapper,
	}, nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"tasks",
		"leave_requests",
		"holidays",
		"token_revocations",
		"login_attempts",
		"employees",
		"positions",
		"departments",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.EmployeeRepository,
	*repositories.OrgRepository,
	*repositories.TokenRevocationRepository,
	*repositories.LoginAttemptRepository,
	*repositories.LeaveRepository,
	*repositories.HolidayRepository,
	*repositories.TaskRepository,
) {
	return repositories.NewEmployeeRepository(db),
		repositories.NewOrgRepository(db),
		repositories.NewTokenRevocationRepository(db),
		repositories.NewLoginAttemptRepository(db),
		repositories.NewLeaveRepository(db),
		repositories.NewHolidayRepository(db),
		repositories.NewTaskRepository(db)
}

// SeedEmployee inserts a test employee with a hashed password
func SeedEmployee(ctx context.Context, db *database.DB, email, password string, role models.Role) (*models.Employee, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	emp := &models.Employee{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    "Test",
		LastName:     "Employee",
		Role:         role,
		Status:       models.StatusActive,
	}

	created, err := repositories.NewEmployeeRepository(db).Create(ctx, emp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert employee: %w", err)
	}

	return created, nil
}

// SeedHoliday inserts a company holiday
func SeedHoliday(ctx context.Context, db *database.DB, h *models.Holiday) (*models.Holiday, error) {
	created, err := repositories.NewHolidayRepository(db).Create(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("failed to insert holiday: %w", err)
	}
	return created, nil
}
