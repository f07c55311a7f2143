package service

import (
	"testing"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewUserRepository(db),
		newTestLeaderboard(db),
	)
}

// seedQuiz 四道单选题，每题 50 分，正确答案都是选项 0
func seedQuiz(t *testing.T, db *gorm.DB) (*model.Quiz, []model.QuizQuestion) {
	t.Helper()
	quiz := &model.Quiz{Title: "密码学基础", Type: model.QuizMCQ}
	require.NoError(t, db.Create(quiz).Error)

	questions := make([]model.QuizQuestion, 0, 4)
	for i := 0; i < 4; i++ {
		q := model.QuizQuestion{
			QuizID:   quiz.ID,
			Question: "第几题",
			Options:  []string{"对", "错", "不知道"},
			Answer:   0,
			Point:    50,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	return quiz, questions
}

func TestQuizSubmitGrades(t *testing.T) {
	db := newTestDB(t)
	svc := newTestQuizService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	quiz, questions := seedQuiz(t, db)

	// 答对 3/4
	answers := map[uint]int{
		questions[0].ID: 0,
		questions[1].ID: 0,
		questions[2].ID: 0,
		questions[3].ID: 2,
	}
	result, err := svc.Submit(user.ID, quiz.ID, SubmitQuizInput{Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, 75.0, result.Score)
	assert.Equal(t, 75.0, result.BestScore)
	assert.Equal(t, 150, result.PointsEarned)
	require.Len(t, result.Results, 4)

	// 判卷明细带正确答案
	for _, r := range result.Results {
		assert.Equal(t, 0, r.Answer)
	}

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 150, fresh.CumulativePoint)
}

func TestQuizResubmitOnlyNewCorrectCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestQuizService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	quiz, questions := seedQuiz(t, db)

	first := map[uint]int{
		questions[0].ID: 0,
		questions[1].ID: 0,
		questions[2].ID: 1,
		questions[3].ID: 1,
	}
	_, err := svc.Submit(user.ID, quiz.ID, SubmitQuizInput{Answers: first})
	require.NoError(t, err)

	// 满分重交：只有新答对的两题计分
	full := map[uint]int{
		questions[0].ID: 0,
		questions[1].ID: 0,
		questions[2].ID: 0,
		questions[3].ID: 0,
	}
	result, err := svc.Submit(user.ID, quiz.ID, SubmitQuizInput{Answers: full})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, 100, result.PointsEarned)

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 200, fresh.CumulativePoint)

	var global model.GlobalLeaderboardEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&global).Error)
	assert.Equal(t, 200, global.TotalQuizPoint)
	assert.Equal(t, 200, global.TotalPoint)
}

func TestQuizBestScoreNeverDrops(t *testing.T) {
	db := newTestDB(t)
	svc := newTestQuizService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	quiz, questions := seedQuiz(t, db)

	full := map[uint]int{
		questions[0].ID: 0,
		questions[1].ID: 0,
		questions[2].ID: 0,
		questions[3].ID: 0,
	}
	_, err := svc.Submit(user.ID, quiz.ID, SubmitQuizInput{Answers: full})
	require.NoError(t, err)

	// 第二次交了白卷：成绩保持 100，积分不重复发
	result, err := svc.Submit(user.ID, quiz.ID, SubmitQuizInput{Answers: map[uint]int{}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 100.0, result.BestScore)
	assert.Equal(t, 0, result.PointsEarned)

	var progress model.QuizProgress
	require.NoError(t, db.Where("user_id = ? AND quiz_id = ?", user.ID, quiz.ID).First(&progress).Error)
	assert.Equal(t, 100.0, progress.Score)
	assert.True(t, progress.Completed)

	// 进度行只有一条
	var count int64
	require.NoError(t, db.Model(&model.QuizProgress{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestQuizListSummaries(t *testing.T) {
	db := newTestDB(t)
	svc := newTestQuizService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	quiz, questions := seedQuiz(t, db)

	_, err := svc.Submit(user.ID, quiz.ID, SubmitQuizInput{Answers: map[uint]int{
		questions[0].ID: 0,
		questions[1].ID: 0,
		questions[2].ID: 0,
		questions[3].ID: 0,
	}})
	require.NoError(t, err)

	summaries, err := svc.ListQuizzes(user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].QuestionCount)
	assert.Equal(t, 100.0, summaries[0].BestScore)
	assert.True(t, summaries[0].Completed)

	// 未登录视角没有个人成绩
	anon, err := svc.ListQuizzes(0)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, 0.0, anon[0].BestScore)
	assert.False(t, anon[0].Completed)
}

func TestQuizQuestionAnswerValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestQuizService(db)
	quiz, _ := seedQuiz(t, db)

	_, err := svc.CreateQuestion(quiz.ID, QuizQuestionInput{
		Question: "越界",
		Options:  []string{"a", "b"},
		Answer:   2,
		Point:    10,
	})
	assert.Error(t, err)
}
