package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paxiitdevteam/retentionos/internal/model"
)

type AIWeightRepository struct {
	db *gorm.DB
}

func NewAIWeightRepository(db *gorm.DB) *AIWeightRepository {
	return &AIWeightRepository{db: db}
}

// Upsert writes a coefficient by name. Values are stored as-is: the weights
// are expected to sum to 1.0 but this is deliberately not enforced here.
func (r *AIWeightRepository) Upsert(name string, value float64) error {
	row := model.AIWeight{Name: name, Value: value, UpdatedAt: time.Now().UTC()}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// GetAll returns every stored coefficient keyed by name.
func (r *AIWeightRepository) GetAll() (map[string]float64, error) {
	var rows []model.AIWeight
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	weights := make(map[string]float64, len(rows))
	for _, row := range rows {
		weights[row.Name] = row.Value
	}
	return weights, nil
}

func (r *AIWeightRepository) Get(name string) (float64, bool, error) {
	var row model.AIWeight
	err := r.db.Where("name = ?", name).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	return row.Value, true, nil
}
