package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/fueleu/ghg-compliance-ledger/internal/banking"
	"github.com/fueleu/ghg-compliance-ledger/internal/compliance"
	"github.com/fueleu/ghg-compliance-ledger/internal/config"
	"github.com/fueleu/ghg-compliance-ledger/internal/events/kafka"
	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/pooling"
	"github.com/fueleu/ghg-compliance-ledger/internal/routes"
	"github.com/fueleu/ghg-compliance-ledger/internal/storage"
	"github.com/fueleu/ghg-compliance-ledger/internal/storage/memory"
	"github.com/fueleu/ghg-compliance-ledger/internal/storage/postgres"
	"github.com/fueleu/ghg-compliance-ledger/internal/storage/sqlite"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[ERROR] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[ERROR] invalid config: %v", err)
	}

	var (
		routeStore      interfaces.RouteStore
		complianceStore interfaces.ComplianceStore
		poolStore       interfaces.PoolStore
	)
	switch cfg.Storage.Backend {
	case "memory":
		store := memory.NewStore()
		routeStore, complianceStore, poolStore = store, store, store
	case "sqlite":
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("[ERROR] open sqlite store: %v", err)
		}
		defer store.Close()
		routeStore, complianceStore, poolStore = store, store, store
	case "postgres":
		store, err := postgres.Open(cfg.Storage.PostgresDSN)
		if err != nil {
			log.Fatalf("[ERROR] open postgres store: %v", err)
		}
		defer store.Close()
		routeStore, complianceStore, poolStore = store, store, store
	}
	log.Printf("[INFO] storage backend: %s", cfg.Storage.Backend)

	if cfg.Storage.SeedFile != "" {
		seeded, err := storage.RoutesFromFile(cfg.Storage.SeedFile)
		if err != nil {
			log.Fatalf("[ERROR] load route seed: %v", err)
		}
		for _, route := range seeded {
			if err := routeStore.SaveRoute(context.Background(), route); err != nil {
				log.Fatalf("[ERROR] seed route %s: %v", route.RouteID, err)
			}
		}
		log.Printf("[INFO] seeded %d routes from %s", len(seeded), cfg.Storage.SeedFile)
	}

	var publisher interfaces.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers)
		defer kp.Close()
		publisher = kp
		log.Printf("[INFO] kafka publisher enabled: %v", cfg.Kafka.Brokers)
	}

	calculator := compliance.NewCalculator(routeStore, complianceStore)
	ledger := banking.NewLedger(complianceStore, publisher)
	poolService := pooling.NewService(poolStore, publisher)
	routeService := routes.NewService(routeStore)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /routes", func(w http.ResponseWriter, r *http.Request) {
		all, err := routeService.GetAll()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, all)
	})

	mux.HandleFunc("GET /routes/comparison", func(w http.ResponseWriter, r *http.Request) {
		data, err := routeService.Comparison()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	})

	mux.HandleFunc("POST /routes/{id}/baseline", func(w http.ResponseWriter, r *http.Request) {
		if err := routeService.SetBaseline(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /compliance/cb", func(w http.ResponseWriter, r *http.Request) {
		shipID, year, ok := shipAndYearParams(w, r)
		if !ok {
			return
		}
		cb, err := calculator.Compute(r.Context(), shipID, year)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cb)
	})

	mux.HandleFunc("GET /compliance/adjusted-cb", func(w http.ResponseWriter, r *http.Request) {
		shipID, year, ok := shipAndYearParams(w, r)
		if !ok {
			return
		}
		adjusted, err := ledger.GetAdjusted(shipID, year)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, adjusted)
	})

	mux.HandleFunc("GET /banking/records", func(w http.ResponseWriter, r *http.Request) {
		shipID, year, ok := shipAndYearParams(w, r)
		if !ok {
			return
		}
		records, err := ledger.Records(shipID, year)
		if err != nil {
			writeError(w, err)
			return
		}
		if records == nil {
			records = []models.BankEntry{}
		}
		writeJSON(w, http.StatusOK, records)
	})

	mux.HandleFunc("POST /banking/bank", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ShipID string `json:"shipId"`
			Year   int    `json:"year"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ShipID == "" || req.Year == 0 {
			writeMessage(w, http.StatusBadRequest, "Missing required fields: shipId and year")
			return
		}
		if err := ledger.Bank(r.Context(), req.ShipID, req.Year); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusCreated, "Surplus successfully banked.")
	})

	mux.HandleFunc("POST /banking/apply", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ShipID string  `json:"shipId"`
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ShipID == "" {
			writeMessage(w, http.StatusBadRequest, "Missing required field: shipId")
			return
		}
		if err := ledger.Apply(r.Context(), req.ShipID, req.Amount); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusCreated, "Banked surplus successfully applied.")
	})

	mux.HandleFunc("POST /pools", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Year    int                      `json:"year"`
			Members []models.PoolMemberInput `json:"members"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Year == 0 || req.Members == nil {
			writeMessage(w, http.StatusBadRequest, "Missing required fields: year and members array")
			return
		}
		pool, err := poolService.CreatePool(r.Context(), req.Year, req.Members)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, pool)
	})

	log.Printf("[INFO] starting server on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, mux))
}

// shipAndYearParams extracts the shipId and year query parameters shared
// by the compliance and banking read endpoints.
func shipAndYearParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	shipID := r.URL.Query().Get("shipId")
	yearStr := r.URL.Query().Get("year")
	if shipID == "" || yearStr == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required query parameters: shipId and year")
		return "", 0, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Query parameter year must be an integer")
		return "", 0, false
	}
	return shipID, year, true
}

// writeError maps domain errors onto HTTP statuses: not-found lookups to
// 404, user-correctable validation failures to 400, allocation invariant
// breaches and anything unrecognised to 500.
func writeError(w http.ResponseWriter, err error) {
	var invariant *pooling.InvariantError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, compliance.ErrRouteNotFound),
		errors.Is(err, banking.ErrSnapshotMissing),
		errors.Is(err, routes.ErrNoBaseline):
		status = http.StatusNotFound
	case errors.Is(err, compliance.ErrUnknownYearTarget),
		errors.Is(err, banking.ErrNoSurplus),
		errors.Is(err, banking.ErrNonPositiveAmount),
		errors.Is(err, banking.ErrInsufficientBank),
		errors.Is(err, pooling.ErrTooFewMembers),
		errors.Is(err, pooling.ErrNegativePoolSum):
		status = http.StatusBadRequest
	case errors.As(err, &invariant):
		// Allocator defect, not a caller mistake. Surface as 500 and
		// keep the details in the log.
		log.Printf("[ERROR] %v", err)
	default:
		log.Printf("[ERROR] %v", err)
	}

	writeMessage(w, status, err.Error())
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
