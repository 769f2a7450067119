package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	"github.com/noah-isme/gestao-escolar-api/internal/repository"
	"github.com/noah-isme/gestao-escolar-api/internal/service"
	"github.com/noah-isme/gestao-escolar-api/pkg/config"
	"github.com/noah-isme/gestao-escolar-api/pkg/database"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
	"github.com/noah-isme/gestao-escolar-api/pkg/logger"
)

var names = []string{
	"Ana", "Bruno", "Carla", "Daniel", "Eduarda", "Fábio", "Gisele", "Henrique",
	"Isabela", "João", "Karla", "Luan", "Marta", "Nicolas", "Olivia", "Paulo",
	"Quésia", "Rafaela", "Sérgio", "Tânia",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := seed(context.Background(), cfg, logr); err != nil {
		logr.Fatal("seed failed", zap.Error(err))
	}
	logr.Info("seed finished")
}

func seed(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	studentRepo := repository.NewStudentRepository(db)
	if err := studentRepo.DeleteAll(ctx); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	classes := service.NewClassService(repository.NewClassRepository(db), nil, nil, logr)
	students := service.NewStudentService(studentRepo, nil, nil, logr)

	classIDs := make([]int64, 0, 5)
	for i := 1; i <= 5; i++ {
		capacity := 10 + rng.Intn(16)
		class, err := classes.Create(ctx, service.ClassRequest{Name: fmt.Sprintf("Turma %d", i), Capacity: &capacity})
		if err != nil {
			return fmt.Errorf("create class %d: %w", i, err)
		}
		classIDs = append(classIDs, class.ID)
	}

	today := models.NewDate(time.Now())
	for _, name := range names {
		birth := models.NewDate(today.AddDate(0, 0, -365*(6+rng.Intn(13))))
		email := emailFor(name)
		req := service.StudentRequest{
			Name:      name,
			BirthDate: &birth,
			Email:     &email,
			Status:    []string{"ativo", "inativo"}[rng.Intn(2)],
		}
		if pick := rng.Intn(len(classIDs) + 1); pick < len(classIDs) {
			req.ClassID = &classIDs[pick]
		}

		_, err := students.Create(ctx, req)
		if errors.Is(err, appErrors.ErrCapacity) {
			req.ClassID = nil
			_, err = students.Create(ctx, req)
		}
		if err != nil {
			return fmt.Errorf("create student %s: %w", name, err)
		}
	}
	return nil
}

// emailFor derives an ASCII mailbox from a display name.
func emailFor(name string) string {
	plain, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		plain = name
	}
	return strings.ToLower(plain) + "@exemplo.com"
}
