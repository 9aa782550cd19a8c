//go:build ignore

// Helper script to seed a demo board into the configured store
// Run with: go run add_test_data.go

package main

import (
	"context"
	"log"

	"github.com/thenoetrevino/leadboard/internal/app"
	"github.com/thenoetrevino/leadboard/internal/config"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open app: %v", err)
	}
	defer a.Close()

	board, err := a.StatusService.CreateBoard(ctx, statusservice.CreateBoardRequest{ID: "demo", Name: "Demo Pipeline"})
	if err != nil {
		log.Fatalf("Failed to create board: %v", err)
	}

	columns := []struct {
		title string
		color string
		leads []string
	}{
		{"Novo Lead", "#5F87D7", []string{"Ana Souza", "Bruno Lima", "Carla Dias"}},
		{"Em Negociação", "#FFAA00", []string{"Diego Alves", "Elisa Rocha"}},
		{"Fechado", "#5FD75F", []string{"Fábio Nunes"}},
	}

	for _, col := range columns {
		status, err := a.StatusService.CreateStatus(ctx, statusservice.CreateStatusRequest{
			BoardID: board.ID,
			Title:   col.title,
			Color:   col.color,
		})
		if err != nil {
			log.Printf("Error creating status '%s': %v", col.title, err)
			continue
		}
		log.Printf("Created status: %s", status.ID)

		for _, name := range col.leads {
			lead, err := a.LeadService.CreateLead(ctx, leadservice.CreateLeadRequest{
				BoardID:  board.ID,
				StatusID: status.ID,
				Name:     name,
				Email:    "contato@example.com",
				Phone:    "+55 11 5555-0100",
			})
			if err != nil {
				log.Printf("Error creating lead '%s': %v", name, err)
			} else {
				log.Printf("Created lead: %s", lead.ID)
			}
		}
	}

	log.Println("Test data added successfully! Try: leadboard board show --board=demo")
}
