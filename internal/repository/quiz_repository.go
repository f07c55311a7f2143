package repository

import (
	"cryptoseven_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("created_at DESC").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions").First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Quiz{}, id).Error
}

func (r *QuizRepository) FindQuestion(id uint) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) FindQuestionsByQuiz(quizID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("quiz_id = ?", quizID).Order("id ASC").Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) CreateQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) UpdateQuestion(q *model.QuizQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuizRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.QuizQuestion{}, id).Error
}

func (r *QuizRepository) FindProgress(userID, quizID uint) (*model.QuizProgress, error) {
	var progress model.QuizProgress
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *QuizRepository) FindProgressByUser(userID uint) ([]model.QuizProgress, error) {
	var progress []model.QuizProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}

// FindClaimedQuestionIDs 用户在某份测验里已计分（答对过）的题目集合
func (r *QuizRepository) FindClaimedQuestionIDs(tx *gorm.DB, userID, quizID uint) (map[uint]bool, error) {
	var answers []model.QuizAnswer
	err := tx.Where("user_id = ? AND quiz_id = ? AND correct = ?", userID, quizID, true).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	claimed := make(map[uint]bool, len(answers))
	for _, a := range answers {
		claimed[a.QuestionID] = true
	}
	return claimed, nil
}
