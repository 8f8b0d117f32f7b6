package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	"github.com/peopledesk/peopledesk-backend/internal/directory"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/db"
	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
	"github.com/peopledesk/peopledesk-backend/pkg/migrate"
	"github.com/peopledesk/peopledesk-backend/pkg/security"
	"github.com/peopledesk/peopledesk-backend/pkg/storage"
	"github.com/peopledesk/peopledesk-backend/pkg/storage/gcs"
	"github.com/peopledesk/peopledesk-backend/pkg/storage/memory"
)

const (
	seedPassword  = "password123"
	dummyUserQty  = 50
	adminEmail    = "admin@example.com"
	employeeEmail = "employee@example.com"
)

var firstNames = []string{
	"Ava", "Ben", "Carla", "Diego", "Elena", "Felix", "Grace", "Hugo",
	"Iris", "Jonas", "Klara", "Liam", "Mona", "Nils", "Olive", "Pavel",
	"Quinn", "Rosa", "Sven", "Tara", "Umar", "Vera", "Will", "Xenia",
	"Yara", "Zane",
}

var lastNames = []string{
	"Abbott", "Berger", "Castillo", "Dunn", "Eriksen", "Fontaine",
	"Gupta", "Hoffman", "Ishida", "Jansen", "Keller", "Lindqvist",
	"Moreau", "Novak", "Okafor", "Petrov", "Quintana", "Reyes",
	"Sanchez", "Tanaka", "Ueda", "Voss", "Weber", "Yilmaz", "Zhou",
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	fatalIf(ctx, logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.App.IsProd() {
		logg.Error(ctx, "refusing to seed a prod database", nil)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	fatalIf(ctx, logg, "bootstrap database", err)
	defer dbClient.Close()

	fatalIf(ctx, logg, "run migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	var store storage.ObjectStore
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		fatalIf(ctx, logg, "bootstrap gcs", err)
		store = gcsClient
	} else {
		logg.Warn(ctx, "no gcs bucket configured, seeded files go to an in-memory store")
		store = memory.NewStore()
	}

	gdb := dbClient.DB()

	logg.Info(ctx, "clearing existing data")
	for _, table := range []string{"gallery_entries", "blobs", "users"} {
		fatalIf(ctx, logg, "clear "+table, gdb.WithContext(ctx).Exec("DELETE FROM "+table).Error)
	}

	hash, err := security.HashPassword(seedPassword, cfg.Password)
	fatalIf(ctx, logg, "hash seed password", err)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	staff := []models.User{
		{ID: uuid.New(), Name: "Admin User", Email: adminEmail, PasswordHash: hash, Role: enums.RoleAdmin, AgreedToTerms: true},
		{ID: uuid.New(), Name: "Employee User", Email: employeeEmail, PasswordHash: hash, Role: enums.RoleEmployee, AgreedToTerms: true},
	}
	for i := range staff {
		fatalIf(ctx, logg, "create "+string(staff[i].Role), gdb.WithContext(ctx).Create(&staff[i]).Error)
	}
	logg.Info(ctx, fmt.Sprintf("staff created: %s / %s (password %s)", adminEmail, employeeEmail, seedPassword))

	dirRepo := directory.NewRepository(gdb)
	blobRepo := blobs.NewRepository(gdb)
	blobService, err := blobs.NewService(blobRepo, store, dirRepo, logg)
	fatalIf(ctx, logg, "create blob service", err)

	accountTypes := []enums.AccountType{
		enums.AccountTypePersonal,
		enums.AccountTypeProfessional,
		enums.AccountTypeAcademic,
	}

	for i := 0; i < dummyUserQty; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		dob := randomDOB(rng)
		user := models.User{
			ID:                    uuid.New(),
			Name:                  first + " " + last,
			Email:                 fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			PasswordHash:          hash,
			Role:                  enums.RoleUser,
			AccountType:           accountTypes[rng.Intn(len(accountTypes))],
			NeedsSensitiveStorage: rng.Intn(5) == 0,
			DateOfBirth:           &dob,
			AgreedToTerms:         true,
			EmailNotifications:    rng.Intn(2) == 0,
			CreatedAt:             randomCreatedAt(rng),
		}
		fatalIf(ctx, logg, "create user", gdb.WithContext(ctx).Create(&user).Error)

		report := blobs.UploadFile{
			FileName:    last + "_report.txt",
			ContentType: "text/plain",
			Data:        []byte(fmt.Sprintf("Report for %s\n\nQuarterly summary pending review.", user.Name)),
		}
		csv := blobs.UploadFile{
			FileName:    "data.csv",
			ContentType: "text/csv",
			Data:        []byte("ID,Name,Email\n1,John,john@test.com\n2,Jane,jane@test.com"),
		}
		for _, file := range []blobs.UploadFile{report, csv} {
			if _, err := blobService.AddFileForUser(ctx, user.ID, file); err != nil {
				fatalIf(ctx, logg, "attach seed file", err)
			}
		}
	}

	logg.Info(ctx, fmt.Sprintf("seeded %d user accounts with files", dummyUserQty))
	logg.Info(ctx, "seeding complete")
}

func randomDOB(rng *rand.Rand) string {
	age := 18 + rng.Intn(48)
	return time.Now().AddDate(-age, -rng.Intn(12), -rng.Intn(28)).Format("2006-01-02")
}

func randomCreatedAt(rng *rand.Rand) time.Time {
	return time.Now().Add(-time.Duration(rng.Intn(2*365*24)) * time.Hour)
}

func fatalIf(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "seed step failed: "+step, err)
	os.Exit(1)
}
