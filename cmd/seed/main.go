package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/mesikahq/patient-registry/internal/config"
	"github.com/mesikahq/patient-registry/internal/database"
	"github.com/mesikahq/patient-registry/internal/idtype"
	"github.com/mesikahq/patient-registry/internal/patient"
)

const seedUser = "SEED_SCRIPT"

type samplePatient struct {
	number     string
	first      string
	middle     string
	last       string
	secondLast string
	email      string
	status     string
}

var sampleTypes = []idtype.IdentificationType{
	{Code: "CED", Name: "Cédula de Ciudadanía", Status: patient.StatusActive},
	{Code: "RUC", Name: "Registro Único de Contribuyentes", Status: patient.StatusActive},
	{Code: "PAS", Name: "Pasaporte", Status: patient.StatusActive},
}

var samplePatients = []samplePatient{
	{"1712345678", "Juan", "Carlos", "Perez", "Sanchez", "juan.perez@example.com", patient.StatusActive},
	{"1798765432", "Ana", "Maria", "Gomez", "López", "ana.gomez@example.com", patient.StatusActive},
	{"1756234890", "Pedro", "", "Lopez", "Rivera", "pedro.lopez@example.com", patient.StatusActive},
	{"1734567890", "Maria", "Elena", "Garcia", "Martinez", "maria.garcia@example.com", patient.StatusActive},
	{"1789654321", "Carlos", "Antonio", "Rodriguez", "Flores", "carlos.rodriguez@example.com", patient.StatusActive},
	{"1712389456", "Patricia", "Guadalupe", "Hernandez", "Castro", "patricia.hernandez@example.com", patient.StatusActive},
	{"1745678123", "Luis", "Miguel", "Diaz", "Vargas", "luis.diaz@example.com", patient.StatusActive},
	{"1798456789", "Rosa", "Isabel", "Morales", "Gutierrez", "rosa.morales@example.com", patient.StatusActive},
	{"1723456789", "Diego", "", "Ortega", "Soto", "diego.ortega@example.com", patient.StatusActive},
	{"1767890123", "Sandra", "Beatriz", "Chavez", "Mendoza", "sandra.chavez@example.com", patient.StatusInactive},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Disconnect(pool)

	for _, t := range sampleTypes {
		_, err := pool.Exec(ctx,
			`INSERT INTO daf_tipos_identificacion
				(codigo_tipo_identificacion, nombre_tipo_identificacion, estado)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (codigo_tipo_identificacion) DO NOTHING`,
			t.Code, t.Name, t.Status)
		if err != nil {
			log.Fatalf("Failed to seed identification type %s: %v", t.Code, err)
		}
	}
	fmt.Println("Identification types seeded")

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM mgm_pacientes`).Scan(&count); err != nil {
		log.Fatalf("Failed to count patients: %v", err)
	}
	if count > 0 {
		fmt.Println("Patient table already has records, skipping sample patients")
		return
	}

	lookup := idtype.NewStore(pool)
	ced, err := lookup.FindByCode(ctx, "CED")
	if err != nil {
		log.Fatalf("Failed to resolve CED identification type: %v", err)
	}

	store := patient.NewStore(pool)
	now := time.Now().UTC()
	for _, sp := range samplePatients {
		p := &patient.Patient{
			ID:                   store.NextID(ctx),
			IdentificationNumber: sp.number,
			IdentificationType:   ced,
			FirstName:            sp.first,
			MiddleName:           sp.middle,
			LastName:             sp.last,
			SecondLastName:       sp.secondLast,
			FullName:             patient.ComputeFullName(sp.first, sp.middle, sp.last, sp.secondLast),
			Email:                sp.email,
			Status:               sp.status,
			CreatedAt:            now,
			CreatedBy:            seedUser,
			UpdatedAt:            now,
		}
		if err := store.Insert(ctx, p); err != nil {
			log.Fatalf("Failed to seed patient %s: %v", sp.number, err)
		}
	}
	fmt.Printf("%d sample patients seeded\n", len(samplePatients))
}
