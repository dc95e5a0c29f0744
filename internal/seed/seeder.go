// Package seed fills the database with fake development data.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/socialhub-app/backend/internal/logger"
	"github.com/socialhub-app/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

var categoryNames = []string{
	"music", "photography", "travel", "cooking", "technology",
	"art", "fitness", "gaming", "books", "film",
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating categories...")
	categories, err := s.seedCategories()
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	log("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(users, 200); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating posts...")
	posts, err := s.seedPosts(users, categories, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating likes...")
	if err := s.seedLikes(users, posts, 800); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	log("Creating comments...")
	if err := s.seedComments(users, posts, 500); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	log("Creating messages...")
	if err := s.seedMessages(users, 400); err != nil {
		return fmt.Errorf("failed to seed messages: %w", err)
	}

	log("Creating notifications...")
	if err := s.seedNotifications(users, posts, 300); err != nil {
		return fmt.Errorf("failed to seed notifications: %w", err)
	}

	return nil
}

// SeedTest seeds the test database with a small fixed set of accounts
func (s *Seeder) SeedTest() error {
	categories, err := s.seedCategories()
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	users, err := s.seedUsers(5)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if _, err := s.seedPosts(users, categories, 10); err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	return nil
}

// Clean removes all seed data (use with caution!)
func (s *Seeder) Clean() error {
	// Delete in reverse order of dependencies
	tables := []string{
		"notifications", "messages", "post_likes", "comments",
		"posts", "follows", "categories", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) seedCategories() ([]models.Category, error) {
	var categories []models.Category
	for _, name := range categoryNames {
		var category models.Category
		err := s.db.Where("name = ?", name).First(&category).Error
		if err == gorm.ErrRecordNotFound {
			category = models.Category{Name: name, Description: gofakeit.Sentence(8)}
			if err := s.db.Create(&category).Error; err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	// Check if we already have seed users (users with @example.com email)
	var seedUserCount int64
	s.db.Model(&models.User{}).Where("email LIKE '%@example.com'").Count(&seedUserCount)
	if seedUserCount >= int64(count) {
		var users []models.User
		if err := s.db.Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing users, skipping creation")
		return users, nil
	}

	// One hash for everyone, bcrypt is slow on purpose ("password123" for dev)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var users []models.User
	for i := 0; i < count; i++ {
		username := gofakeit.Username()

		var existing models.User
		for {
			if err := s.db.Where("username = ?", username).First(&existing).Error; err == gorm.ErrRecordNotFound {
				break
			}
			username = gofakeit.Username()
		}

		user := models.User{
			Username:     username,
			Email:        fmt.Sprintf("%s@example.com", username),
			PasswordHash: string(hashedPassword),
			Bio:          gofakeit.HipsterSentence(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedFollows(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		followed := users[rand.Intn(len(users))]
		if follower.ID == followed.ID {
			continue
		}

		follow := models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
		// pairs are unique, collisions are expected and fine
		s.db.Where("follower_id = ? AND followed_id = ?", follower.ID, followed.ID).
			FirstOrCreate(&follow)
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, categories []models.Category, count int) ([]models.Post, error) {
	var posts []models.Post
	for i := 0; i < count; i++ {
		post := models.Post{
			UserID:      users[rand.Intn(len(users))].ID,
			CategoryID:  categories[rand.Intn(len(categories))].ID,
			Description: gofakeit.Sentence(rand.Intn(15) + 3),
			CreatedAt:   gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedLikes(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		like := models.PostLike{
			UserID: users[rand.Intn(len(users))].ID,
			PostID: posts[rand.Intn(len(posts))].ID,
		}
		s.db.Where("user_id = ? AND post_id = ?", like.UserID, like.PostID).
			FirstOrCreate(&like)
	}
	return nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		comment := models.Comment{
			UserID:  users[rand.Intn(len(users))].ID,
			PostID:  posts[rand.Intn(len(posts))].ID,
			Content: gofakeit.Sentence(rand.Intn(12) + 2),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedMessages(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		sender := users[rand.Intn(len(users))]
		receiver := users[rand.Intn(len(users))]
		if sender.ID == receiver.ID {
			continue
		}

		message := models.Message{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    gofakeit.Sentence(rand.Intn(10) + 1),
			IsRead:     rand.Float32() < 0.7,
			CreatedAt:  gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()),
		}
		if err := s.db.Create(&message).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedNotifications(users []models.User, posts []models.Post, count int) error {
	types := []models.NotificationType{
		models.NotificationLike,
		models.NotificationComment,
		models.NotificationFollow,
		models.NotificationNewPost,
		models.NotificationMessage,
	}

	for i := 0; i < count; i++ {
		target := users[rand.Intn(len(users))]
		from := users[rand.Intn(len(users))]
		if target.ID == from.ID {
			continue
		}

		notification := models.Notification{
			Type:       types[rand.Intn(len(types))],
			UserID:     target.ID,
			FromUserID: from.ID,
			IsRead:     rand.Float32() < 0.5,
		}
		switch notification.Type {
		case models.NotificationLike, models.NotificationComment, models.NotificationNewPost:
			postID := posts[rand.Intn(len(posts))].ID
			notification.PostID = &postID
		}
		if err := s.db.Create(&notification).Error; err != nil {
			return err
		}
	}
	return nil
}
