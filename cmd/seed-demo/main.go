package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/config"
	"github.com/papergen/papergen-backend/internal/database"
	"github.com/papergen/papergen-backend/internal/logger"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/papergen/papergen-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// seed-demo populates a fresh database with a demo teacher account, one
// lesson with two chapters and enough questions per difficulty level to
// generate a 10-question paper straight away.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	chapterRepo := repository.NewChapterRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)

	fmt.Println("=== Seeding Demo Data ===")

	// Permission catalog. Migrations seed this too; ON CONFLICT keeps
	// the command re-runnable against an already seeded database.
	for _, p := range model.AllPermissions {
		if _, err := pool.Exec(ctx,
			`INSERT INTO permissions (code, description) VALUES ($1, $2)
			 ON CONFLICT (code) DO NOTHING`, p.Code, p.Description); err != nil {
			log.Fatal().Err(err).Str("code", p.Code).Msg("Failed to seed permission")
		}
	}
	fmt.Printf("Seeded %d permissions\n", len(model.AllPermissions))

	teacherRole, err := roleRepo.GetByName(ctx, "teacher", false)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create teacher role")
	}
	if err := roleRepo.GrantAll(ctx, teacherRole.ID); err != nil {
		log.Fatal().Err(err).Msg("Failed to grant permissions")
	}

	demo := &model.User{
		Name:   "Giáo viên Demo",
		Email:  "demo@papergen.local",
		RoleID: teacherRole.ID,
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("demo123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash demo password")
	}
	demo.PasswordHash = string(hash)

	if existing, err := userRepo.GetByEmail(ctx, demo.Email); err == nil {
		demo = existing
		fmt.Printf("Demo user already exists with ID: %d\n", demo.ID)
	} else {
		if err := userRepo.Create(ctx, demo); err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo user")
		}
		fmt.Printf("Created demo user %s (password: demo123) with ID: %d\n", demo.Email, demo.ID)
	}

	lesson := &model.Lesson{
		Name:        "Toán 12",
		Label:       "TOAN12",
		Description: "Môn Toán lớp 12 học kỳ 1",
		Status:      model.VisibilityPrivate,
		Enable:      true,
		OwnerID:     demo.ID,
	}
	if err := lessonRepo.Create(ctx, lesson); err != nil {
		log.Fatal().Err(err).Msg("Failed to create lesson")
	}
	fmt.Printf("Created lesson %q (%s)\n", lesson.Name, lesson.ID)

	chapterNames := []string{"Hàm số và đồ thị", "Nguyên hàm và tích phân"}
	for ci, name := range chapterNames {
		ch := &model.Chapter{
			LessonID: &lesson.ID,
			Name:     name,
			Label:    fmt.Sprintf("CH%02d", ci+1),
			Status:   model.VisibilityPrivate,
			Enable:   true,
			OwnerID:  demo.ID,
		}
		if err := chapterRepo.Create(ctx, ch); err != nil {
			log.Fatal().Err(err).Str("chapter", name).Msg("Failed to create chapter")
		}
		if err := lessonRepo.AddChapter(ctx, lesson.ID, ch.ID); err != nil {
			log.Fatal().Err(err).Msg("Failed to attach chapter to lesson")
		}

		created := 0
		for _, level := range []model.Level{model.LevelEasy, model.LevelMedium, model.LevelHard} {
			for i := 1; i <= 10; i++ {
				q := demoQuestion(ch.ID, demo.ID, name, level, i)
				if err := questionRepo.Create(ctx, q); err != nil {
					log.Fatal().Err(err).Msg("Failed to create question")
				}
				created++
			}
		}
		fmt.Printf("Created chapter %q with %d questions\n", name, created)
	}

	fmt.Println("\nDone. Log in as demo@papergen.local / demo123 and generate a paper.")
}

func demoQuestion(chapterID uuid.UUID, ownerID int, chapter string, level model.Level, n int) *model.Question {
	score := 1.0
	answers := []model.Answer{
		{ID: uuid.New(), Value: "Đáp án đúng", Score: &score, IsCorrect: true, OwnerID: ownerID},
		{ID: uuid.New(), Value: "Phương án nhiễu 1", OwnerID: ownerID},
		{ID: uuid.New(), Value: "Phương án nhiễu 2", OwnerID: ownerID},
		{ID: uuid.New(), Value: "Phương án nhiễu 3", OwnerID: ownerID},
	}
	return &model.Question{
		ChapterID: chapterID,
		Content:   fmt.Sprintf("[%s] Câu hỏi mức %s số %d", chapter, level.DisplayName(), n),
		Level:     level,
		Category:  model.CategorySingleChoice,
		Answers:   answers,
		OwnerID:   ownerID,
		Enable:    true,
		Status:    model.VisibilityPrivate,
	}
}
