package service

import (
	"errors"
	"time"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CTFService 赛事管理、报名与夺旗判题
type CTFService struct {
	CTFRepo         *repository.CTFRepository
	UserRepo        *repository.UserRepository
	LeaderboardRepo *repository.LeaderboardRepository
	Leaderboard     *LeaderboardService
}

func NewCTFService(
	ctfRepo *repository.CTFRepository,
	userRepo *repository.UserRepository,
	leaderboardRepo *repository.LeaderboardRepository,
	leaderboard *LeaderboardService,
) *CTFService {
	return &CTFService{
		CTFRepo:         ctfRepo,
		UserRepo:        userRepo,
		LeaderboardRepo: leaderboardRepo,
		Leaderboard:     leaderboard,
	}
}

type CTFEventInput struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required"`
	Type        string    `json:"type"`
	Format      string    `json:"format" binding:"omitempty,oneof=jeopardy attack-defense"`
	Categories  []string  `json:"categories"`
}

func (s *CTFService) CreateEvent(input CTFEventInput) (*model.CTFEvent, error) {
	event := &model.CTFEvent{
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Type:        input.Type,
		Format:      model.CTFFormat(input.Format),
		Status:      statusForWindow(input.StartDate, input.EndDate, time.Now()),
		Categories:  input.Categories,
	}
	if event.Type == "" {
		event.Type = "public"
	}
	if event.Format == "" {
		event.Format = model.Jeopardy
	}
	if err := s.CTFRepo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *CTFService) UpdateEvent(id uint, input CTFEventInput) (*model.CTFEvent, error) {
	event, err := s.CTFRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCTFNotFound
		}
		return nil, err
	}
	event.Title = input.Title
	event.Description = input.Description
	event.Image = input.Image
	event.StartDate = input.StartDate
	event.EndDate = input.EndDate
	if input.Type != "" {
		event.Type = input.Type
	}
	if input.Format != "" {
		event.Format = model.CTFFormat(input.Format)
	}
	event.Categories = input.Categories
	event.Status = statusForWindow(event.StartDate, event.EndDate, time.Now())
	if err := s.CTFRepo.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *CTFService) DeleteEvent(id uint) error {
	return s.CTFRepo.Delete(id)
}

type CTFQuestionInput struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Category      string `json:"category" binding:"required"`
	Difficulty    string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Points        int    `json:"points" binding:"required,min=1"`
	Flag          string `json:"flag" binding:"required"`
	Hints         string `json:"hints"`
	SecretMessage string `json:"secretMessage"`
	FileURL       string `json:"fileUrl"`
}

// CreateQuestion flag 明文只在入参里出现一次，落库前即做哈希
func (s *CTFService) CreateQuestion(ctfID uint, input CTFQuestionInput) (*model.CTFQuestion, error) {
	if _, err := s.CTFRepo.FindByID(ctfID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCTFNotFound
		}
		return nil, err
	}
	q := &model.CTFQuestion{
		CTFID:         ctfID,
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Difficulty:    model.CTFDifficulty(input.Difficulty),
		Points:        input.Points,
		FlagHash:      util.HashFlag(input.Flag),
		Hints:         input.Hints,
		SecretMessage: input.SecretMessage,
		FileURL:       input.FileURL,
	}
	if q.Difficulty == "" {
		q.Difficulty = model.Easy
	}
	if err := s.CTFRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *CTFService) UpdateQuestion(id uint, input CTFQuestionInput) (*model.CTFQuestion, error) {
	q, err := s.CTFRepo.FindQuestion(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	q.Title = input.Title
	q.Description = input.Description
	q.Category = input.Category
	if input.Difficulty != "" {
		q.Difficulty = model.CTFDifficulty(input.Difficulty)
	}
	q.Points = input.Points
	if input.Flag != "" {
		q.FlagHash = util.HashFlag(input.Flag)
	}
	q.Hints = input.Hints
	q.SecretMessage = input.SecretMessage
	q.FileURL = input.FileURL
	if err := s.CTFRepo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *CTFService) DeleteQuestion(id uint) error {
	return s.CTFRepo.DeleteQuestion(id)
}

// CTFEventSummary 列表项，附带当前用户的报名态
type CTFEventSummary struct {
	model.CTFEvent
	Players    int64 `json:"players"`
	Registered bool  `json:"registered"`
	MyScore    int   `json:"myScore"`
}

func (s *CTFService) ListEvents(userID uint) ([]CTFEventSummary, error) {
	events, err := s.CTFRepo.FindAll()
	if err != nil {
		return nil, err
	}

	regByEvent := map[uint]*model.CTFRegistration{}
	if userID != 0 {
		regs, err := s.CTFRepo.FindRegistrationsByUser(userID)
		if err != nil {
			return nil, err
		}
		for i := range regs {
			regByEvent[regs[i].CTFID] = &regs[i]
		}
	}

	summaries := make([]CTFEventSummary, 0, len(events))
	for _, e := range events {
		players, _ := s.CTFRepo.CountPlayers(e.ID)
		summary := CTFEventSummary{CTFEvent: e, Players: players}
		if reg, ok := regByEvent[e.ID]; ok {
			summary.Registered = true
			summary.MyScore = reg.Score
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CTFEventDetail 详情：题目按分类分组，附带解题标记
type CTFEventDetail struct {
	model.CTFEvent
	Players      int64                         `json:"players"`
	Registration *model.CTFRegistration        `json:"registration,omitempty"`
	Challenges   map[string][]CTFChallengeView `json:"challenges"`
}

type CTFChallengeView struct {
	model.CTFQuestion
	Solved bool `json:"solved"`
}

func (s *CTFService) GetEvent(id, userID uint) (*CTFEventDetail, error) {
	event, err := s.CTFRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCTFNotFound
		}
		return nil, err
	}

	questions, err := s.CTFRepo.FindQuestionsByEvent(id)
	if err != nil {
		return nil, err
	}

	detail := &CTFEventDetail{
		CTFEvent:   *event,
		Challenges: map[string][]CTFChallengeView{},
	}
	detail.Players, _ = s.CTFRepo.CountPlayers(id)

	solved := map[uint]bool{}
	if userID != 0 {
		if reg, err := s.CTFRepo.FindRegistration(userID, id); err == nil {
			detail.Registration = reg
			solved, err = s.CTFRepo.FindSolvedQuestionIDs(userID, id)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, q := range questions {
		detail.Challenges[q.Category] = append(detail.Challenges[q.Category], CTFChallengeView{
			CTFQuestion: q,
			Solved:      solved[q.ID],
		})
	}
	return detail, nil
}

// Register 报名：一个事务内落报名行、赛事榜行，并确保全局榜有占位行
func (s *CTFService) Register(userID, ctfID uint) (*model.CTFRegistration, error) {
	event, err := s.CTFRepo.FindByID(ctfID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCTFNotFound
		}
		return nil, err
	}
	if time.Now().After(event.EndDate) {
		return nil, util.ErrCTFNotActive
	}

	if _, err := s.CTFRepo.FindRegistration(userID, ctfID); err == nil {
		return nil, util.ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	reg := &model.CTFRegistration{
		UserID:   userID,
		CTFID:    ctfID,
		Status:   model.CTFRegistered,
		JoinedAt: time.Now(),
	}
	err = s.CTFRepo.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reg).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.CTFLeaderboardEntry{
			CTFID:         ctfID,
			UserID:        userID,
			Username:      user.Username,
			AvatarPicture: user.AvatarPicture,
		}).Error; err != nil {
			return err
		}
		if user.Role == model.Admin {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&model.GlobalLeaderboardEntry{
			UserID:        userID,
			Username:      user.Username,
			AvatarPicture: user.AvatarPicture,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("CTF 报名成功", zap.Uint("user_id", userID), zap.Uint("ctf_id", ctfID))
	return reg, nil
}

// SubmitFlagResult 判题结果
type SubmitFlagResult struct {
	Correct       bool   `json:"correct"`
	Points        int    `json:"points"`
	TotalScore    int    `json:"totalScore"`
	SecretMessage string `json:"secretMessage,omitempty"`
}

// SubmitFlag 判题：哈希比对，答对后在一个事务内完成
// 解题行、赛内得分、赛事榜、个人积分与全局榜的全部更新
func (s *CTFService) SubmitFlag(userID, ctfID, questionID uint, flag string) (*SubmitFlagResult, error) {
	event, err := s.CTFRepo.FindByID(ctfID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCTFNotFound
		}
		return nil, err
	}
	now := time.Now()
	if now.Before(event.StartDate) || now.After(event.EndDate) {
		return nil, util.ErrCTFNotActive
	}

	reg, err := s.CTFRepo.FindRegistration(userID, ctfID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotRegistered
		}
		return nil, err
	}

	question, err := s.CTFRepo.FindQuestion(questionID)
	if err != nil || question.CTFID != ctfID {
		return nil, util.ErrQuestionNotFound
	}

	solved, err := s.CTFRepo.FindSolvedQuestionIDs(userID, ctfID)
	if err != nil {
		return nil, err
	}
	if solved[questionID] {
		return nil, util.ErrAlreadySolved
	}

	if util.HashFlag(flag) != question.FlagHash {
		return nil, util.ErrWrongFlag
	}

	var newTotal int
	err = s.CTFRepo.DB.Transaction(func(tx *gorm.DB) error {
		// (user, question) 唯一索引兜底并发重复提交
		if err := tx.Create(&model.CTFSolve{
			UserID:     userID,
			QuestionID: questionID,
			CTFID:      ctfID,
			Points:     question.Points,
			SolvedAt:   now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.CTFRegistration{}).
			Where("user_id = ? AND ctf_id = ?", userID, ctfID).
			Updates(map[string]interface{}{
				"score":  gorm.Expr("score + ?", question.Points),
				"status": model.CTFInProgress,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.CTFLeaderboardEntry{}).
			Where("ctf_id = ? AND user_id = ?", ctfID, userID).
			Updates(map[string]interface{}{
				"score":         gorm.Expr("score + ?", question.Points),
				"last_solve_at": now,
			}).Error; err != nil {
			return err
		}
		newTotal, err = s.Leaderboard.AwardPoints(tx, userID, question.Points, SourceCTF)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Leaderboard.SyncScore(userID, newTotal)

	logger.Log.Info("夺旗成功",
		zap.Uint("user_id", userID),
		zap.Uint("ctf_id", ctfID),
		zap.Uint("question_id", questionID),
		zap.Int("points", question.Points))

	return &SubmitFlagResult{
		Correct:       true,
		Points:        question.Points,
		TotalScore:    reg.Score + question.Points,
		SecretMessage: question.SecretMessage,
	}, nil
}

// Finish 选手交卷：标记完赛时间，不再重复计分
func (s *CTFService) Finish(userID, ctfID uint) (*model.CTFRegistration, error) {
	reg, err := s.CTFRepo.FindRegistration(userID, ctfID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotRegistered
		}
		return nil, err
	}
	if reg.Status == model.CTFSubmitted {
		return reg, nil
	}
	now := time.Now()
	reg.Status = model.CTFSubmitted
	reg.SubmittedAt = &now
	if err := s.CTFRepo.DB.Save(reg).Error; err != nil {
		return nil, err
	}
	return reg, nil
}

// ScoreboardRow 赛事榜单行
type ScoreboardRow struct {
	Rank          int    `json:"rank"`
	UserID        uint   `json:"userId"`
	Username      string `json:"username"`
	AvatarPicture string `json:"avatarPicture"`
	Score         int    `json:"score"`
	IsViewer      bool   `json:"isViewer,omitempty"`
}

// Scoreboard 前 10 名；登录选手不在前 10 时以真实名次替换第 10 行
func (s *CTFService) Scoreboard(ctfID, viewerID uint) ([]ScoreboardRow, error) {
	if _, err := s.CTFRepo.FindByID(ctfID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCTFNotFound
		}
		return nil, err
	}

	entries, err := s.LeaderboardRepo.FindCTFEntries(ctfID)
	if err != nil {
		return nil, err
	}

	const topN = 10
	rows := make([]ScoreboardRow, 0, topN)
	var viewerRow *ScoreboardRow
	for i, e := range entries {
		row := ScoreboardRow{
			Rank:          i + 1,
			UserID:        e.UserID,
			Username:      e.Username,
			AvatarPicture: e.AvatarPicture,
			Score:         e.Score,
			IsViewer:      e.UserID == viewerID,
		}
		if i < topN {
			rows = append(rows, row)
		} else if row.IsViewer {
			viewerRow = &row
		}
	}
	if viewerRow != nil && len(rows) == topN {
		rows[topN-1] = *viewerRow
	}
	return rows, nil
}

// SyncEventStatuses 按时间窗推进赛事状态，后台任务周期性调用
func (s *CTFService) SyncEventStatuses() error {
	events, err := s.CTFRepo.FindAll()
	if err != nil {
		return err
	}
	now := time.Now()
	for i := range events {
		next := statusForWindow(events[i].StartDate, events[i].EndDate, now)
		if next != events[i].Status {
			events[i].Status = next
			if err := s.CTFRepo.Update(&events[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func statusForWindow(start, end, now time.Time) model.CTFStatus {
	switch {
	case now.Before(start):
		return model.CTFUpcoming
	case now.After(end):
		return model.CTFCompleted
	default:
		return model.CTFActive
	}
}
