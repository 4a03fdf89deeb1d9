// Command crmapi serves the portfolio CRM REST API.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/waffle/app"
	"github.com/purplesmurf1998/crm-api/internal/app/bootstrap"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
