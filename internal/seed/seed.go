package seed

import (
	"log"
	"math/rand"
	"time"

	"conduit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumArticles int
	ShouldClean bool
}

// Seeder orchestrates demo data generation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rand    *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Join and dependent tables go first so
// foreign keys never block the wipe.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []string{"article_tags", "favorites", "comments", "follows", "articles", "tags", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

// Run populates the database with a connected set of users, articles,
// comments, follows and favorites.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}

	articles, err := s.seedArticles(users, opts.NumArticles)
	if err != nil {
		return err
	}

	if err := s.seedFollows(users); err != nil {
		return err
	}
	if err := s.seedEngagement(users, articles); err != nil {
		return err
	}

	log.Printf("Seeded %d users and %d articles", len(users), len(articles))
	return nil
}

func (s *Seeder) seedUsers(n int) ([]*models.User, error) {
	log.Printf("Creating %d users...", n)
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedArticles(users []*models.User, n int) ([]*models.Article, error) {
	log.Printf("Creating %d articles...", n)
	articles := make([]*models.Article, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		article, err := s.factory.CreateArticle(author)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// seedFollows gives every user a handful of followees.
func (s *Seeder) seedFollows(users []*models.User) error {
	log.Println("Creating follow graph...")
	for _, follower := range users {
		count := s.rand.Intn(5) + 1
		for i := 0; i < count; i++ {
			followee := users[s.rand.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// seedEngagement scatters comments and favorites across the articles.
func (s *Seeder) seedEngagement(users []*models.User, articles []*models.Article) error {
	log.Println("Creating comments and favorites...")
	for _, article := range articles {
		for i := 0; i < s.rand.Intn(4); i++ {
			commenter := users[s.rand.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, article); err != nil {
				return err
			}
		}

		for i := 0; i < s.rand.Intn(6); i++ {
			fan := users[s.rand.Intn(len(users))]
			favorite := models.Favorite{UserID: fan.ID, ArticleID: article.ID}
			if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&favorite).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
