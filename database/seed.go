package database

import (
	"fmt"
	"log"
	"os"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := s.SeedDemoCourse(); err != nil {
		return fmt.Errorf("failed to seed demo course: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	// Get admin credentials from environment variables
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	// Hash password
	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		FullName:     "System Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
		IsStaff:      true,
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedCategories creates the starter course categories
func (s *Seeder) SeedCategories() error {
	// Check if categories already exist
	var count int64
	if err := s.db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Categories already exist, skipping...")
		return nil
	}

	categories := []model.Category{
		{Name: "Programming", Description: "Software development, languages and tooling"},
		{Name: "Design", Description: "UI, UX and visual design"},
		{Name: "Business", Description: "Management, marketing and entrepreneurship"},
		{Name: "Data Science", Description: "Statistics, machine learning and analytics"},
		{Name: "Personal Development", Description: "Productivity, communication and career skills"},
	}

	if err := s.db.Create(&categories).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d categories\n", len(categories))
	return nil
}

// SeedDemoCourse creates a demo instructor with one published course so a
// fresh environment has browsable content.
func (s *Seeder) SeedDemoCourse() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	var category model.Category
	if err := s.db.Where("name = ?", "Programming").First(&category).Error; err != nil {
		return fmt.Errorf("programming category not found: %w", err)
	}

	passwordHash, err := auth.HashPassword("instructor-demo-password")
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	instructor := model.User{
		Email:        "demo.instructor@skillhub.app",
		PasswordHash: passwordHash,
		FullName:     "Demo Instructor",
		Role:         model.RoleInstructor,
		IsActive:     true,
	}
	if err := s.db.Where("email = ?", instructor.Email).FirstOrCreate(&instructor).Error; err != nil {
		return err
	}

	course := model.Course{
		AuthorID:    instructor.ID,
		CategoryID:  category.ID,
		Title:       "Getting Started with Go",
		Description: "An introductory course covering the Go toolchain, syntax and idioms.",
		Level:       model.LevelBeginner,
	}
	if err := s.db.Create(&course).Error; err != nil {
		return err
	}

	courseModule := model.CourseModule{
		CourseID:    course.ID,
		Title:       "Basics",
		Description: "Setting up and writing your first program",
	}
	if err := s.db.Create(&courseModule).Error; err != nil {
		return err
	}

	lesson := model.Lesson{
		ModuleID: courseModule.ID,
		Title:    "Hello, World",
		Content:  "Install the toolchain and run your first program.",
	}
	if err := s.db.Create(&lesson).Error; err != nil {
		return err
	}

	log.Printf("✅ Created demo course: %s\n", course.Title)
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
