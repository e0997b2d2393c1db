package repository

import (
	"errors"

	"github.com/ferrara94/CashCard-Microservice/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no card matches the id/owner pair.
var ErrNotFound = errors.New("cash card not found")

// Page describes one slice of an owner's cards. Number is zero-based.
type Page struct {
	Number    int
	Size      int
	SortField string
	SortDesc  bool
}

// sortColumns whitelists the fields a client may sort by; anything else
// falls back to the default ordering.
var sortColumns = map[string]string{
	"amount": "amount",
	"id":     "id",
}

// CashCardRepository is the persistence boundary for cards. Every query is
// scoped to a single owner; there is no way to read or touch another
// owner's rows through it.
type CashCardRepository interface {
	FindByIDAndOwner(id int64, owner string) (*models.CashCard, error)
	FindByOwner(owner string, page Page) ([]models.CashCard, error)
	FindAllByOwner(owner string) ([]models.CashCard, error)
	ExistsByIDAndOwner(id int64, owner string) (bool, error)
	// Create inserts a new card. A caller-supplied id that already exists
	// fails with the store's uniqueness error; it is never upserted.
	Create(card *models.CashCard) error
	Save(card *models.CashCard) error
	DeleteByIDAndOwner(id int64, owner string) error
}

type gormCashCardRepository struct {
	db *gorm.DB
}

// NewCashCardRepository returns a CashCardRepository backed by gorm.
func NewCashCardRepository(db *gorm.DB) CashCardRepository {
	return &gormCashCardRepository{db: db}
}

func (r *gormCashCardRepository) FindByIDAndOwner(id int64, owner string) (*models.CashCard, error) {
	var card models.CashCard
	err := r.db.Where("id = ? AND owner = ?", id, owner).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (r *gormCashCardRepository) FindByOwner(owner string, page Page) ([]models.CashCard, error) {
	if page.Number < 0 {
		page.Number = 0
	}
	if page.Size <= 0 {
		page.Size = 20
	}

	column, ok := sortColumns[page.SortField]
	if !ok {
		column = "amount"
		page.SortDesc = false
	}
	order := column + " ASC"
	if page.SortDesc {
		order = column + " DESC"
	}

	cards := make([]models.CashCard, 0, page.Size)
	err := r.db.
		Where("owner = ?", owner).
		Order(order).
		Limit(page.Size).
		Offset(page.Number * page.Size).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *gormCashCardRepository) FindAllByOwner(owner string) ([]models.CashCard, error) {
	var cards []models.CashCard
	err := r.db.
		Where("owner = ?", owner).
		Order("amount ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *gormCashCardRepository) ExistsByIDAndOwner(id int64, owner string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CashCard{}).
		Where("id = ? AND owner = ?", id, owner).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormCashCardRepository) Create(card *models.CashCard) error {
	return r.db.Create(card).Error
}

func (r *gormCashCardRepository) Save(card *models.CashCard) error {
	return r.db.Save(card).Error
}

func (r *gormCashCardRepository) DeleteByIDAndOwner(id int64, owner string) error {
	res := r.db.Where("id = ? AND owner = ?", id, owner).Delete(&models.CashCard{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
