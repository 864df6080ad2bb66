package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ansdeepu/kerala-rides/internal/config"
	"github.com/ansdeepu/kerala-rides/internal/db"
	"github.com/ansdeepu/kerala-rides/internal/models"
)

func stop(name, arrival string, lat, lng float64) models.Stop {
	return models.Stop{
		Name:        name,
		ArrivalTime: arrival,
		Location:    models.Location{Lat: lat, Lng: lng},
	}
}

// Demo routes across Kerala. Arrival times are schedule-local and the
// tracker derives everything else.
func demoRoutes() []models.Bus {
	return []models.Bus{
		{
			Name:   "Trivandrum -> Ernakulam",
			Number: "KL-15 A 1234",
			Stops: []models.Stop{
				stop("Trivandrum", "8:00 AM", 8.5241, 76.9366),
				stop("Kollam", "9:10 AM", 8.8932, 76.6141),
				stop("Alappuzha", "10:45 AM", 9.4981, 76.3388),
				stop("Ernakulam", "12:00 PM", 9.9816, 76.2996),
			},
		},
		{
			Name:   "Ernakulam -> Kozhikode",
			Number: "KL-15 A 5678",
			Stops: []models.Stop{
				stop("Ernakulam", "9:00 AM", 9.9816, 76.2996),
				stop("Thrissur", "10:15 AM", 10.5276, 76.2144),
				stop("Malappuram", "11:45 AM", 11.0510, 76.0712),
				stop("Kozhikode", "1:00 PM", 11.2588, 75.7804),
			},
		},
		{
			Name:   "Trivandrum -> Kottayam",
			Number: "KL-15 A 9012",
			Stops: []models.Stop{
				stop("Trivandrum", "7:30 AM", 8.5241, 76.9366),
				stop("Kottarakkara", "8:45 AM", 9.0069, 76.7725),
				stop("Adoor", "9:15 AM", 9.1611, 76.7366),
				stop("Kottayam", "10:30 AM", 9.5914, 76.5222),
			},
		},
		{
			Name:   "Pathanamthitta -> Kollam",
			Number: "KL-15 B 3456",
			Stops: []models.Stop{
				stop("Pathanamthitta", "8:00 AM", 9.2648, 76.7870),
				stop("Adoor", "8:20 AM", 9.1611, 76.7366),
				stop("Kollam", "9:00 AM", 8.8932, 76.6141),
			},
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	routes := &db.MongoRoutes{Collection: client.Database(cfg.MongoDB).Collection("routes")}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, bus := range demoRoutes() {
		// Skip routes that were already seeded.
		existing, err := routes.Collection.CountDocuments(ctx, bson.M{"number": bus.Number})
		if err != nil {
			log.WithError(err).Fatal("Failed to check existing routes")
		}
		if existing > 0 {
			log.WithField("number", bus.Number).Info("Route already seeded, skipping")
			continue
		}
		bus.Direction = models.DirectionForward
		bus.Status = models.StatusNotStarted
		bus.NextStopIndex = 0
		if len(bus.Stops) > 0 {
			bus.CurrentLocation = bus.Stops[0].Location
			bus.NextStopName = bus.Stops[0].Name
		}
		id, err := routes.InsertRoute(ctx, bus)
		if err != nil {
			log.WithError(err).Fatal("Failed to seed route")
		}
		log.WithFields(log.Fields{"id": id, "name": bus.Name}).Info("Seeded route")
	}
}
