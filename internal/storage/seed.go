package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

type seedCustomer struct {
	name, email, city, country string
}

type seedProduct struct {
	name, category, description string
	price                       float64
	stock                       int
}

type seedEmployee struct {
	firstName, lastName, email, position, region string
}

var (
	demoCustomers = []seedCustomer{
		{"Hans Johannesen", "hj1@example.com", "Berlin", "Germany"},
		{"Anna Müller", "anna.mueller@example.com", "Munich", "Germany"},
		{"Lars Schmidt", "lars.schmidt@example.com", "Hamburg", "Germany"},
		{"Petra Bauer", "petra.bauer@example.com", "Cologne", "Germany"},
		{"Klaus Meier", "klaus.meier@example.com", "Frankfurt", "Germany"},
		{"Monika Fischer", "monika.fischer@example.com", "Stuttgart", "Germany"},
		{"Jan Becker", "jan.becker@example.com", "Dresden", "Germany"},
		{"Sophie Weber", "sophie.weber@example.com", "Leipzig", "Germany"},
		{"Tobias Wolf", "tobias.wolf@example.com", "Dortmund", "Germany"},
		{"Julia Klein", "julia.klein@example.com", "Nuremberg", "Germany"},
		{"Markus Braun", "markus.braun@example.com", "Bremen", "Germany"},
		{"Lisa Hoffmann", "lisa.hoffmann@example.com", "Hanover", "Germany"},
		{"Stefan Richter", "stefan.richter@example.com", "Essen", "Germany"},
		{"Nina Wolf", "nina.wolf@example.com", "Duisburg", "Germany"},
		{"Oliver Klein", "oliver.klein@example.com", "Bochum", "Germany"},
		{"Claudia König", "claudia.koenig@example.com", "Wuppertal", "Germany"},
		{"Michael Lang", "michael.lang@example.com", "Bonn", "Germany"},
		{"Sandra Fuchs", "sandra.fuchs@example.com", "Mannheim", "Germany"},
		{"Peter Weiß", "peter.weiss@example.com", "Karlsruhe", "Germany"},
		{"Julia Neumann", "julia.neumann@example.com", "Wiesbaden", "Germany"},
	}
	demoProducts = []seedProduct{
		{"Laptop Pro 15", "Laptops", "High-end laptop", 1499.99, 25},
		{"Smartphone X", "Smartphones", "Latest smartphone model", 999.99, 50},
		{"Wireless Mouse", "Zubehör", "Ergonomic wireless mouse", 49.99, 150},
		{"Mechanical Keyboard", "Zubehör", "RGB backlit keyboard", 89.99, 80},
		{"27\" Monitor", "Monitore", "4K UHD display", 299.99, 40},
		{"USB-C Hub", "Zubehör", "Multiport adapter", 29.99, 120},
		{"External SSD 1TB", "Speicher", "Portable SSD drive", 129.99, 60},
		{"Noise Cancelling Headphones", "Audio", "Wireless over-ear headphones", 199.99, 70},
		{"Smartwatch Series 5", "Wearables", "Fitness tracking watch", 249.99, 35},
		{"Gaming Chair", "Möbel", "Comfortable ergonomic chair", 159.99, 20},
		{"Bluetooth Speaker", "Audio", "Portable speaker", 79.99, 90},
		{"Webcam HD", "Zubehör", "High-definition webcam", 59.99, 100},
		{"Tablet Plus", "Tablets", "10-inch tablet", 399.99, 45},
		{"Wireless Charger", "Zubehör", "Fast wireless charger", 39.99, 110},
		{"Fitness Tracker", "Wearables", "Activity tracker wristband", 99.99, 80},
		{"Smart Light Bulb", "Smart Home", "WiFi-enabled bulb", 24.99, 150},
		{"Router X2000", "Netzwerk", "Dual-band router", 89.99, 60},
		{"Action Camera", "Kameras", "4K waterproof camera", 179.99, 40},
		{"E-Reader", "Tablets", "6-inch e-book reader", 129.99, 55},
		{"Gaming Mouse", "Zubehör", "High precision mouse", 69.99, 70},
	}
	demoEmployees = []seedEmployee{
		{"Michael", "Schneider", "michael.schneider@example.com", "Sales Manager", "Berlin"},
		{"Laura", "Hartmann", "laura.hartmann@example.com", "Accountant", "Berlin"},
		{"Stefan", "Neumann", "stefan.neumann@example.com", "Developer", "Munich"},
		{"Eva", "Klein", "eva.klein@example.com", "HR Specialist", "Hamburg"},
		{"Daniel", "Bauer", "daniel.bauer@example.com", "Marketing", "Cologne"},
		{"Sarah", "Fischer", "sarah.fischer@example.com", "Sales Assistant", "Berlin"},
		{"Tom", "Wagner", "tom.wagner@example.com", "Customer Support", "Frankfurt"},
		{"Nina", "Koch", "nina.koch@example.com", "Designer", "Munich"},
		{"Jan", "Zimmermann", "jan.zimmermann@example.com", "Product Manager", "Hamburg"},
		{"Lena", "Wolf", "lena.wolf@example.com", "QA Engineer", "Stuttgart"},
		{"Peter", "Schulz", "peter.schulz@example.com", "Sales", "Dresden"},
		{"Sandra", "Mayer", "sandra.mayer@example.com", "Support", "Leipzig"},
		{"Karl", "Neumann", "karl.neumann@example.com", "Developer", "Berlin"},
		{"Anna", "Berg", "anna.berg@example.com", "Marketing", "Dortmund"},
		{"Lukas", "Schmidt", "lukas.schmidt@example.com", "Sales", "Nuremberg"},
		{"Jana", "Fischer", "jana.fischer@example.com", "HR", "Bremen"},
		{"Tobias", "Weber", "tobias.weber@example.com", "Product Owner", "Hanover"},
		{"Isabel", "Krause", "isabel.krause@example.com", "Designer", "Essen"},
		{"Jan", "Lorenz", "jan.lorenz@example.com", "QA", "Bonn"},
		{"Miriam", "Hoffmann", "miriam.hoffmann@example.com", "Customer Support", "Mannheim"},
	}
)

// Seed fills an empty database with a small demo data set. It does nothing
// when customers already exist.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return fmt.Errorf("count customers: %w", err)
	}
	if count > 0 {
		log.Debug().Int("customers", count).Msg("database already seeded")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, c := range demoCustomers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customers (name, email, city, country) VALUES (?, ?, ?, ?)`,
			c.name, c.email, c.city, c.country); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.email, err)
		}
	}
	for _, p := range demoProducts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (name, category, description, price, stock) VALUES (?, ?, ?, ?, ?)`,
			p.name, p.category, p.description, p.price, p.stock); err != nil {
			return fmt.Errorf("seed product %s: %w", p.name, err)
		}
	}
	for _, e := range demoEmployees {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO employees (first_name, last_name, email, position, region) VALUES (?, ?, ?, ?, ?)`,
			e.firstName, e.lastName, e.email, e.position, e.region); err != nil {
			return fmt.Errorf("seed employee %s: %w", e.email, err)
		}
	}

	// Sales cycle through customers; product, quantity and date follow a
	// fixed pattern so repeated seeds produce the same data.
	for i := range 20 {
		customer := i % len(demoCustomers)
		product := (i * 7) % len(demoProducts)
		quantity := i%5 + 1
		total := math.Round(demoProducts[product].price*float64(quantity)*100) / 100
		date := fmt.Sprintf("2025-%02d-%02d", i%6+1, (i*11)%28+1)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sales (customer_id, product_id, employee_id, quantity, total_amount, sale_date, city)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			customer+1, product+1, i%len(demoEmployees)+1, quantity, total, date, demoCustomers[customer].city); err != nil {
			return fmt.Errorf("seed sale %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Info().Int("customers", len(demoCustomers)).Int("products", len(demoProducts)).Msg("seeded demo data")
	return nil
}
