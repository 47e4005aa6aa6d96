// Command adduser adds or lists accounts directly against the database,
// for bootstrapping an install without going through the web UI.
package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/LabaLabaSunda/Attendance-system/internal/config"
	"github.com/LabaLabaSunda/Attendance-system/internal/database"
	"github.com/LabaLabaSunda/Attendance-system/internal/models"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	var (
		configPath = pflag.String("config", "config.yaml", "path to config file")
		username   = pflag.String("username", "", "username for the new account")
		email      = pflag.String("email", "", "email for the new account")
		password   = pflag.String("password", "", "password for the new account")
		admin      = pflag.Bool("admin", false, "grant admin rights")
		list       = pflag.Bool("list", false, "list existing users instead of adding one")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	if *list {
		listUsers(db)
		return
	}

	if *username == "" || *email == "" || *password == "" {
		pflag.Usage()
		os.Exit(2)
	}
	if len(*password) < 6 {
		log.Fatal("password minimal 6 karakter")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", *username).Count(&count).Error; err != nil {
		log.Fatalf("check username: %v", err)
	}
	if count > 0 {
		log.Fatalf("user %q sudah ada", *username)
	}
	if err := db.Model(&models.User{}).Where("email = ?", *email).Count(&count).Error; err != nil {
		log.Fatalf("check email: %v", err)
	}
	if count > 0 {
		log.Fatalf("email %q sudah digunakan", *email)
	}

	cost := cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := models.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
		IsAdmin:      *admin,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("create user: %v", err)
	}

	role := "User"
	if user.IsAdmin {
		role = "Admin"
	}
	fmt.Printf("User %q berhasil ditambahkan sebagai %s (id=%d)\n", user.Username, role, user.ID)
}

func listUsers(db *gorm.DB) {
	var users []models.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		log.Fatalf("list users: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUsername\tEmail\tRole")
	for _, u := range users {
		role := "User"
		if u.IsAdmin {
			role = "Admin"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, role)
	}
	w.Flush()
}
