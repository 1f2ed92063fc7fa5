// Команда seed наполняет базу демонстрационными кортами и слотами.
// Используется для локальной разработки и стендов.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-CourtBookingService/internal/config"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	slotstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	days := flag.Int("days", 7, "how many days of slots to generate, starting tomorrow")
	openTime := flag.String("open", "08:00", "first slot start time (HH:MM)")
	closeTime := flag.String("close", "22:00", "last slot end time (HH:MM)")
	slotMinutes := flag.Int("slot-minutes", 60, "slot duration in minutes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.Path, cfg.Logs.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Seed: failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Seed: failed to ping database: %v", err)
	}

	courtRepo := courtstore.NewRepository(db)
	slotRepo := slotstore.NewRepository(db)

	courts := demoCourts()

	for _, c := range courts {
		created, err := courtRepo.Create(ctx, c)
		if err != nil {
			log.Fatal("Seed: failed to create court %q: %v", c.Name, err)
		}
		log.Info("Seed: created court id=%d name=%q", created.ID, created.Name)

		slots, err := buildSlots(created, *days, *openTime, *closeTime, *slotMinutes)
		if err != nil {
			log.Fatal("Seed: failed to build slots for court %q: %v", created.Name, err)
		}

		if err := slotRepo.CreateBatch(ctx, slots); err != nil {
			log.Fatal("Seed: failed to insert slots for court %q: %v", created.Name, err)
		}
		log.Info("Seed: created %d slots for court id=%d", len(slots), created.ID)
	}

	log.Info("Seed: done, %d courts provisioned", len(courts))
}

func demoCourts() []*domain.Court {
	return []*domain.Court{
		{
			OwnerID:      1,
			Name:         "Центральный корт",
			Location:     "Москва, ул. Спортивная, 1",
			PricePerHour: 1500,
			Available:    true,
			Images:       []string{"https://example.com/images/central-1.jpg"},
		},
		{
			OwnerID:      1,
			Name:         "Корт у парка",
			Location:     "Москва, Парковая аллея, 5",
			PricePerHour: 1200,
			Available:    true,
			Images:       []string{"https://example.com/images/park-1.jpg", "https://example.com/images/park-2.jpg"},
		},
		{
			OwnerID:      2,
			Name:         "Крытый корт \"Заря\"",
			Location:     "Санкт-Петербург, Невский пр., 100",
			PricePerHour: 2000,
			Available:    false,
			Images:       []string{},
		},
	}
}

// buildSlots генерирует сетку слотов на days дней вперед, начиная с завтра.
// Последний слот заканчивается не позже времени закрытия.
func buildSlots(court *domain.Court, days int, open, close string, slotMinutes int) ([]*domain.Slot, error) {
	openAt := types.TimeString(open)
	if err := openAt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid open time: %w", err)
	}

	closeAt := types.TimeString(close)
	if err := closeAt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid close time: %w", err)
	}

	if !openAt.IsBefore(closeAt) {
		return nil, fmt.Errorf("open time %s must be before close time %s", openAt, closeAt)
	}

	price := court.PricePerHour * float64(slotMinutes) / 60

	var slots []*domain.Slot

	today := time.Now()
	for day := 1; day <= days; day++ {
		date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)

		for start := openAt; start.IsBefore(closeAt); {
			end, err := start.AddMinutes(slotMinutes)
			if err != nil {
				return nil, err
			}
			if end.IsAfter(closeAt) {
				break
			}

			slots = append(slots, &domain.Slot{
				CourtID:   court.ID,
				Date:      date,
				StartTime: start,
				EndTime:   end,
				Price:     price,
			})

			start = end
		}
	}

	return slots, nil
}
