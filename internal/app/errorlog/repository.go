package errorlog

import "gorm.io/gorm"

type Repository interface {
	Insert(rec *Record) error
	List(opts ListOptions) ([]*Record, int64, error)
	CountByCategory() (map[string]int, error)
	Delete(ids []uint64) (int64, error)
	DeleteAll() (int64, error)
	DeleteUpTo(maxID uint64) (int64, error)
	Each(batch int, fn func([]*Record) error) (uint64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(rec *Record) error {
	return r.db.Create(rec).Error
}

func (r *repository) List(opts ListOptions) ([]*Record, int64, error) {
	var records []*Record
	var total int64

	query := r.db.Model(&Record{})
	if opts.Category != "" {
		query = query.Where("error_type = ?", opts.Category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("id DESC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repository) CountByCategory() (map[string]int, error) {
	var rows []struct {
		ErrorType string
		Count     int
	}
	err := r.db.Model(&Record{}).
		Select("error_type, COUNT(*) AS count").
		Group("error_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ErrorType] = row.Count
	}
	return counts, nil
}

func (r *repository) Delete(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Where("id IN ?", ids).Delete(&Record{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteAll() (int64, error) {
	res := r.db.Where("1 = 1").Delete(&Record{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteUpTo(maxID uint64) (int64, error) {
	res := r.db.Where("id <= ?", maxID).Delete(&Record{})
	return res.RowsAffected, res.Error
}

// Each walks the log in id order and returns the highest id visited.
func (r *repository) Each(batch int, fn func([]*Record) error) (uint64, error) {
	var maxID uint64
	var records []*Record
	err := r.db.Model(&Record{}).FindInBatches(&records, batch, func(tx *gorm.DB, _ int) error {
		if len(records) == 0 {
			return nil
		}
		if err := fn(records); err != nil {
			return err
		}
		maxID = records[len(records)-1].ID
		return nil
	}).Error
	return maxID, err
}
