package repository

import (
	"cryptoseven_backend/internal/model"

	"gorm.io/gorm"
)

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

func (r *LeaderboardRepository) FindCTFEntries(ctfID uint) ([]model.CTFLeaderboardEntry, error) {
	var entries []model.CTFLeaderboardEntry
	err := r.DB.Where("ctf_id = ?", ctfID).
		Order("score DESC, last_solve_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *LeaderboardRepository) FindCTFEntry(ctfID, userID uint) (*model.CTFLeaderboardEntry, error) {
	var entry model.CTFLeaderboardEntry
	err := r.DB.Where("ctf_id = ? AND user_id = ?", ctfID, userID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LeaderboardRepository) FindGlobalEntries(limit int) ([]model.GlobalLeaderboardEntry, error) {
	var entries []model.GlobalLeaderboardEntry
	q := r.DB.Order("total_point DESC, updated_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *LeaderboardRepository) FindGlobalEntry(userID uint) (*model.GlobalLeaderboardEntry, error) {
	var entry model.GlobalLeaderboardEntry
	err := r.DB.Where("user_id = ?", userID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GlobalRank 返回用户在全局榜中的名次（1 起），按同分先到先排
func (r *LeaderboardRepository) GlobalRank(entry *model.GlobalLeaderboardEntry) (int64, error) {
	var ahead int64
	err := r.DB.Model(&model.GlobalLeaderboardEntry{}).
		Where("total_point > ? OR (total_point = ? AND updated_at < ?)",
			entry.TotalPoint, entry.TotalPoint, entry.UpdatedAt).
		Count(&ahead).Error
	return ahead + 1, err
}

func (r *LeaderboardRepository) CountGlobal() (int64, error) {
	var count int64
	err := r.DB.Model(&model.GlobalLeaderboardEntry{}).Count(&count).Error
	return count, err
}
