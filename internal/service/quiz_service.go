package service

import (
	"errors"
	"math"
	"time"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuizService 测验管理与判卷
type QuizService struct {
	QuizRepo    *repository.QuizRepository
	UserRepo    *repository.UserRepository
	Leaderboard *LeaderboardService
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	userRepo *repository.UserRepository,
	leaderboard *LeaderboardService,
) *QuizService {
	return &QuizService{
		QuizRepo:    quizRepo,
		UserRepo:    userRepo,
		Leaderboard: leaderboard,
	}
}

type QuizInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"omitempty,oneof=mcq drag-and-drop"`
}

func (s *QuizService) CreateQuiz(input QuizInput) (*model.Quiz, error) {
	quiz := &model.Quiz{
		Title:       input.Title,
		Description: input.Description,
		Type:        model.QuizType(input.Type),
	}
	if quiz.Type == "" {
		quiz.Type = model.QuizMCQ
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(id uint, input QuizInput) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	quiz.Title = input.Title
	quiz.Description = input.Description
	if input.Type != "" {
		quiz.Type = model.QuizType(input.Type)
	}
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(id uint) error {
	return s.QuizRepo.Delete(id)
}

type QuizQuestionInput struct {
	Question    string   `json:"question" binding:"required"`
	Options     []string `json:"options" binding:"required,min=2"`
	Answer      int      `json:"answer" binding:"min=0"`
	Explanation string   `json:"explanation"`
	Point       int      `json:"point" binding:"required,min=1"`
}

func (s *QuizService) CreateQuestion(quizID uint, input QuizQuestionInput) (*model.QuizQuestion, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if input.Answer >= len(input.Options) {
		return nil, errors.New("answer index out of range")
	}
	q := &model.QuizQuestion{
		QuizID:      quizID,
		Question:    input.Question,
		Options:     input.Options,
		Answer:      input.Answer,
		Explanation: input.Explanation,
		Point:       input.Point,
	}
	if err := s.QuizRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) UpdateQuestion(id uint, input QuizQuestionInput) (*model.QuizQuestion, error) {
	q, err := s.QuizRepo.FindQuestion(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	if input.Answer >= len(input.Options) {
		return nil, errors.New("answer index out of range")
	}
	q.Question = input.Question
	q.Options = input.Options
	q.Answer = input.Answer
	q.Explanation = input.Explanation
	q.Point = input.Point
	if err := s.QuizRepo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) DeleteQuestion(id uint) error {
	return s.QuizRepo.DeleteQuestion(id)
}

// QuizSummary 列表项，附带当前用户的最高成绩
type QuizSummary struct {
	model.Quiz
	QuestionCount int     `json:"questionCount"`
	BestScore     float64 `json:"bestScore"`
	Completed     bool    `json:"completed"`
}

func (s *QuizService) ListQuizzes(userID uint) ([]QuizSummary, error) {
	quizzes, err := s.QuizRepo.FindAll()
	if err != nil {
		return nil, err
	}

	progressByQuiz := map[uint]*model.QuizProgress{}
	if userID != 0 {
		progress, err := s.QuizRepo.FindProgressByUser(userID)
		if err != nil {
			return nil, err
		}
		for i := range progress {
			progressByQuiz[progress[i].QuizID] = &progress[i]
		}
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		questions, err := s.QuizRepo.FindQuestionsByQuiz(quiz.ID)
		if err != nil {
			return nil, err
		}
		summary := QuizSummary{Quiz: quiz, QuestionCount: len(questions)}
		if p, ok := progressByQuiz[quiz.ID]; ok {
			summary.BestScore = p.Score
			summary.Completed = p.Completed
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *QuizService) GetQuiz(id uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

type SubmitQuizInput struct {
	// Answers 题目ID -> 所选选项下标
	Answers map[uint]int `json:"answers" binding:"required"`
}

// QuestionResult 单题判定，交卷后才下发正确答案与解析
type QuestionResult struct {
	QuestionID  uint   `json:"questionId"`
	Correct     bool   `json:"correct"`
	Answer      int    `json:"answer"`
	Explanation string `json:"explanation"`
	Point       int    `json:"point"`
}

type SubmitQuizResult struct {
	Score        float64          `json:"score"`        // 本次成绩（百分比）
	BestScore    float64          `json:"bestScore"`    // 合并后的历史最高
	PointsEarned int              `json:"pointsEarned"` // 本次新计入的积分
	Results      []QuestionResult `json:"results"`
}

// Submit 判卷：成绩取历史最高，只有首次答对的题计积分；
// 进度、答题明细、个人积分与全局榜在同一事务内落库
func (s *QuizService) Submit(userID, quizID uint, input SubmitQuizInput) (*SubmitQuizResult, error) {
	questions, err := s.QuizRepo.FindQuestionsByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizNotFound
	}

	result := &SubmitQuizResult{}
	correctCount := 0
	correctIDs := map[uint]bool{}
	for _, q := range questions {
		picked, answered := input.Answers[q.ID]
		correct := answered && picked == q.Answer
		if correct {
			correctCount++
			correctIDs[q.ID] = true
		}
		result.Results = append(result.Results, QuestionResult{
			QuestionID:  q.ID,
			Correct:     correct,
			Answer:      q.Answer,
			Explanation: q.Explanation,
			Point:       q.Point,
		})
	}
	result.Score = math.Round(float64(correctCount)/float64(len(questions))*1000) / 10

	var newTotal int
	now := time.Now()
	err = s.QuizRepo.DB.Transaction(func(tx *gorm.DB) error {
		claimed, err := s.QuizRepo.FindClaimedQuestionIDs(tx, userID, quizID)
		if err != nil {
			return err
		}

		delta := 0
		for _, q := range questions {
			if !correctIDs[q.ID] {
				continue
			}
			if claimed[q.ID] {
				continue
			}
			delta += q.Point
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"correct": true}),
			}).Create(&model.QuizAnswer{
				UserID:     userID,
				QuestionID: q.ID,
				QuizID:     quizID,
				Correct:    true,
			}).Error; err != nil {
				return err
			}
		}
		result.PointsEarned = delta

		progress := &model.QuizProgress{
			UserID:      userID,
			QuizID:      quizID,
			Score:       result.Score,
			Completed:   true,
			StartedAt:   &now,
			CompletedAt: &now,
		}
		if prior, err := s.QuizRepo.FindProgress(userID, quizID); err == nil {
			// 成绩只升不降
			if prior.Score > result.Score {
				progress.Score = prior.Score
			}
			progress.ID = prior.ID
			progress.CreatedAt = prior.CreatedAt
			progress.StartedAt = prior.StartedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		result.BestScore = progress.Score
		if err := tx.Save(progress).Error; err != nil {
			return err
		}

		if delta > 0 {
			newTotal, err = s.Leaderboard.AwardPoints(tx, userID, delta, SourceQuiz)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.PointsEarned > 0 {
		s.Leaderboard.SyncScore(userID, newTotal)
		logger.Log.Info("测验计分",
			zap.Uint("user_id", userID),
			zap.Uint("quiz_id", quizID),
			zap.Int("points", result.PointsEarned),
			zap.Float64("score", result.Score))
	}

	return result, nil
}

// GetProgress 用户测验进度（仪表盘用）
func (s *QuizService) GetProgress(userID uint) ([]model.QuizProgress, error) {
	return s.QuizRepo.FindProgressByUser(userID)
}
