package main

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/database/models/budget"
	"sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/workflow"
)

func main() {
	log.Println("🌱 Starting database seeding...")

	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	db := database.GetDB()

	org, err := seedOrganization(db)
	if err != nil {
		log.Fatalf("Failed to seed organization: %v", err)
	}

	users, err := seedUsers(db, org, cfg)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	subActivity, err := seedRKA(db, org)
	if err != nil {
		log.Fatalf("Failed to seed RKA: %v", err)
	}

	if err := seedNPD(db, org, users[models.RolePPTK], subActivity); err != nil {
		log.Fatalf("Failed to seed NPD: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedOrganization(db *gorm.DB) (*models.Organization, error) {
	org := models.Organization{
		Name: "Dinas Pendidikan Kota Contoh",
		Slug: "dinas-pendidikan-kota-contoh",
	}

	var existing models.Organization
	err := db.Where("slug = ?", org.Slug).First(&existing).Error
	if err == nil {
		log.Println("   Organization already exists, skipping")
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := db.Create(&org).Error; err != nil {
		return nil, err
	}
	log.Printf("   Created organization: %s", org.Name)
	return &org, nil
}

// seedUsers creates one user per role. Only the admin gets a local
// password; the rest authenticate through the identity provider.
func seedUsers(db *gorm.DB, org *models.Organization, cfg *config.Config) (map[models.Role]*models.User, error) {
	adminPassword := cfg.AdminPassword
	if adminPassword == "" {
		adminPassword = "admin123"
		log.Println("   ⚠️ ADMIN_PASSWORD not set, using default development password")
	}
	hashed, err := auth.HashPassword(adminPassword)
	if err != nil {
		return nil, err
	}

	seedData := []struct {
		role      models.Role
		email     string
		firstName string
		lastName  string
		nip       string
		password  string
	}{
		{models.RoleAdmin, cfg.AdminEmail, "Administrator", "Sistem", "196801011990031001", hashed},
		{models.RolePPTK, "pptk@sinpd.go.id", "Budi", "Santoso", "197502142000121002", ""},
		{models.RoleBendahara, "bendahara@sinpd.go.id", "Siti", "Rahayu", "198003052005012003", ""},
		{models.RoleVerifikator, "verifikator@sinpd.go.id", "Agus", "Wijaya", "198207182006041004", ""},
		{models.RoleViewer, "viewer@sinpd.go.id", "Dewi", "Lestari", "199001232015022005", ""},
	}

	users := make(map[models.Role]*models.User, len(seedData))
	for _, s := range seedData {
		var user models.User
		err := db.Where("email = ?", s.email).First(&user).Error
		if err == nil {
			users[s.role] = &user
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		user = models.User{
			Email:          s.email,
			Password:       s.password,
			FirstName:      s.firstName,
			LastName:       s.lastName,
			NIP:            s.nip,
			Role:           s.role,
			OrganizationID: &org.ID,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		log.Printf("   Created user: %s (%s)", s.email, s.role)
		users[s.role] = &user
	}

	return users, nil
}

// seedRKA builds a small budget tree: one program, one activity, one
// sub activity with two spending accounts.
func seedRKA(db *gorm.DB, org *models.Organization) (*budget.SubActivity, error) {
	fiscalYear := time.Now().Year()

	var existing budget.Program
	err := db.Where("organization_id = ? AND code = ? AND fiscal_year = ?",
		org.ID, "1.01.01", fiscalYear).First(&existing).Error
	if err == nil {
		log.Println("   RKA tree already exists, skipping")
		var sub budget.SubActivity
		if err := db.Where("organization_id = ? AND fiscal_year = ?", org.ID, fiscalYear).
			First(&sub).Error; err != nil {
			return nil, err
		}
		return &sub, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var sub budget.SubActivity
	err = db.Transaction(func(tx *gorm.DB) error {
		program := budget.Program{
			OrganizationID: org.ID,
			Code:           "1.01.01",
			Name:           "Program Pengelolaan Pendidikan",
			FiscalYear:     fiscalYear,
			Pagu:           75_000_000,
		}
		if err := tx.Create(&program).Error; err != nil {
			return err
		}

		activity := budget.Activity{
			OrganizationID: org.ID,
			ProgramID:      program.ID,
			Code:           "1.01.01.2.01",
			Name:           "Pengelolaan Pendidikan Sekolah Dasar",
			FiscalYear:     fiscalYear,
			Pagu:           75_000_000,
		}
		if err := tx.Create(&activity).Error; err != nil {
			return err
		}

		sub = budget.SubActivity{
			OrganizationID: org.ID,
			ActivityID:     activity.ID,
			Code:           "1.01.01.2.01.0001",
			Name:           "Penyediaan Biaya Operasional Sekolah",
			FiscalYear:     fiscalYear,
			Pagu:           75_000_000,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		accounts := []budget.Account{
			{
				OrganizationID: org.ID,
				SubActivityID:  sub.ID,
				Code:           "5.1.02.01.01.0024",
				Name:           "Belanja Alat Tulis Kantor",
				FiscalYear:     fiscalYear,
				Pagu:           25_000_000,
			},
			{
				OrganizationID: org.ID,
				SubActivityID:  sub.ID,
				Code:           "5.1.02.02.01.0003",
				Name:           "Belanja Jasa Kantor",
				FiscalYear:     fiscalYear,
				Pagu:           50_000_000,
			},
		}
		for i := range accounts {
			if err := tx.Create(&accounts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("   Created RKA tree for fiscal year %d", fiscalYear)
	return &sub, nil
}

// seedNPD creates one draft document with a line and its checklist so
// the workflow can be exercised immediately after seeding.
func seedNPD(db *gorm.DB, org *models.Organization, creator *models.User, sub *budget.SubActivity) error {
	var count int64
	if err := db.Model(&npd.NPD{}).Where("organization_id = ?", org.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("   NPD documents already exist, skipping")
		return nil
	}

	var account budget.Account
	if err := db.Where("sub_activity_id = ?", sub.ID).First(&account).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		doc := npd.NPD{
			OrganizationID: org.ID,
			SubActivityID:  sub.ID,
			Number:         fmt.Sprintf("NPD/UP/0001/%d", sub.FiscalYear),
			Type:           npd.TypeUP,
			Status:         string(workflow.StatusDraft),
			Description:    "Uang persediaan operasional triwulan pertama",
			FiscalYear:     sub.FiscalYear,
			CreatedBy:      creator.ID,
		}
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}

		line := npd.Line{
			NPDID:       doc.ID,
			AccountID:   account.ID,
			Description: "Pembelian alat tulis kantor",
			Amount:      5_000_000,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}

		for i, item := range npd.ChecklistTemplate(doc.Type) {
			checklistItem := npd.ChecklistItem{
				NPDID:    doc.ID,
				Label:    item.Label,
				Required: item.Required,
				Position: i,
			}
			if err := tx.Create(&checklistItem).Error; err != nil {
				return err
			}
		}

		log.Printf("   Created sample NPD: %s", doc.Number)
		return nil
	})
}
