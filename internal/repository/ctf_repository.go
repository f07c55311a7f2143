package repository

import (
	"cryptoseven_backend/internal/model"

	"gorm.io/gorm"
)

type CTFRepository struct {
	DB *gorm.DB
}

func NewCTFRepository(db *gorm.DB) *CTFRepository {
	return &CTFRepository{DB: db}
}

func (r *CTFRepository) FindAll() ([]model.CTFEvent, error) {
	var events []model.CTFEvent
	err := r.DB.Order("start_date DESC").Find(&events).Error
	return events, err
}

func (r *CTFRepository) FindByID(id uint) (*model.CTFEvent, error) {
	var event model.CTFEvent
	err := r.DB.First(&event, id).Error
	return &event, err
}

func (r *CTFRepository) Create(event *model.CTFEvent) error {
	return r.DB.Create(event).Error
}

func (r *CTFRepository) Update(event *model.CTFEvent) error {
	return r.DB.Save(event).Error
}

func (r *CTFRepository) Delete(id uint) error {
	return r.DB.Delete(&model.CTFEvent{}, id).Error
}

func (r *CTFRepository) FindQuestion(id uint) (*model.CTFQuestion, error) {
	var q model.CTFQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *CTFRepository) FindQuestionsByEvent(ctfID uint) ([]model.CTFQuestion, error) {
	var questions []model.CTFQuestion
	err := r.DB.Where("ctf_id = ?", ctfID).Order("category ASC, points ASC").Find(&questions).Error
	return questions, err
}

func (r *CTFRepository) CreateQuestion(q *model.CTFQuestion) error {
	return r.DB.Create(q).Error
}

func (r *CTFRepository) UpdateQuestion(q *model.CTFQuestion) error {
	return r.DB.Save(q).Error
}

func (r *CTFRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.CTFQuestion{}, id).Error
}

func (r *CTFRepository) FindRegistration(userID, ctfID uint) (*model.CTFRegistration, error) {
	var reg model.CTFRegistration
	err := r.DB.Where("user_id = ? AND ctf_id = ?", userID, ctfID).First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *CTFRepository) FindRegistrationsByUser(userID uint) ([]model.CTFRegistration, error) {
	var regs []model.CTFRegistration
	err := r.DB.Where("user_id = ?", userID).Find(&regs).Error
	return regs, err
}

func (r *CTFRepository) CountPlayers(ctfID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CTFRegistration{}).Where("ctf_id = ?", ctfID).Count(&count).Error
	return count, err
}

func (r *CTFRepository) FindSolvedQuestionIDs(userID, ctfID uint) (map[uint]bool, error) {
	var solves []model.CTFSolve
	err := r.DB.Where("user_id = ? AND ctf_id = ?", userID, ctfID).Find(&solves).Error
	if err != nil {
		return nil, err
	}
	solved := make(map[uint]bool, len(solves))
	for _, s := range solves {
		solved[s.QuestionID] = true
	}
	return solved, nil
}

// CountFlagsByUser 用户跨赛事累计夺旗数，全局排行榜展示用
func (r *CTFRepository) CountFlagsByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CTFSolve{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
