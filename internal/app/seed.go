package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/cleardeed/closing-service/internal/dtos"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/repositories"
	"github.com/cleardeed/closing-service/internal/services"
	"github.com/cleardeed/closing-service/internal/utils"
)

// SeedTestData inserts one user per role and a demo closing file so a
// fresh environment is immediately usable. Safe to skip in production;
// gated behind SEED_TEST_DATA.
func SeedTestData(
	ctx context.Context,
	userRepo repositories.UserRepository,
	closingService *services.ClosingService,
) error {
	seedUsers := []models.User{
		{ID: uuid.New(), Name: "Dana Scully", Email: "dana.scully@example.com", Role: models.RoleTitleAdmin},
		{ID: uuid.New(), Name: "Fox Mulder", Email: "fox.mulder@example.com", Role: models.RoleTitleUser},
		{ID: uuid.New(), Name: "Alex Krycek", Email: "a.krycek@example.com", Role: models.RoleTitleAbstractor},
		{ID: uuid.New(), Name: "Walter Skinner", Email: "walter.skinner@example.com", Role: models.RoleAgent},
		{ID: uuid.New(), Name: "John Buyer", Email: "john.buyer@example.com", Role: models.RoleBuyer},
		{ID: uuid.New(), Name: "Christopher Sauerzopf", Email: "chris.s@example.com", Role: models.RoleSeller},
	}
	for i := range seedUsers {
		existing, err := userRepo.GetByEmail(ctx, seedUsers[i].Email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := userRepo.Create(ctx, &seedUsers[i]); err != nil {
			return err
		}
	}

	_, err := closingService.CreateClosingFile(ctx, dtos.CreatePropertyRequest{
		Address:                   "881 West Broad Street",
		City:                      "Columbus",
		State:                     "OH",
		ZipCode:                   "43222",
		MarketingRequestSubmitted: true,
	})
	if err != nil {
		return err
	}

	utils.Logger.Info("Seeded demo users and closing file")
	return nil
}
