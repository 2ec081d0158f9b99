// Command seed writes fake posts straight into the post store for UI
// development without API credentials. No remote calls are made; image
// URLs point at a placeholder service.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"driftgram/internal/models"
	"driftgram/internal/store"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

func main() {
	count := flag.Int("count", 12, "number of demo posts to create")
	dataFile := flag.String("data-file", "data/posts.json", "path to the post store file")
	maxDays := flag.Int("max-days", 30, "spread post timestamps over this many days")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	fileStore, err := store.NewFileStore(*dataFile, nil)
	if err != nil {
		log.Fatalf("Failed to open post store: %v", err)
	}

	for i := 0; i < *count; i++ {
		daysBack := r.Intn(*maxDays)
		hoursBack := r.Intn(24)
		createdAt := time.Now().
			Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour).
			UnixMilli()

		post := models.Post{
			ID:        uuid.NewString(),
			CreatedAt: createdAt,
			Prompt:    gofakeit.Sentence(12),
			Caption:   fmt.Sprintf("%s #%s #%s", gofakeit.Sentence(8), gofakeit.Word(), gofakeit.Word()),
			ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/1024/1024", gofakeit.UUID()),
			User:      models.DefaultAuthor,
			Stats: models.Stats{
				Likes:    r.Intn(5000),
				Comments: r.Intn(500),
			},
		}
		if err := fileStore.Append(post); err != nil {
			log.Fatalf("Failed to append demo post: %v", err)
		}
	}

	log.Printf("Seeded %d demo posts into %s (total now %d)", *count, *dataFile, fileStore.Count())
}
