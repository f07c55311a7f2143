// 演示数据导入脚本
//
// 向空库写入示例课程、测验与 CTF 赛事，便于本地联调前端。
// 已有数据时跳过，不会重复导入。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"log"
	"time"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/database"
	"cryptoseven_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var courseCount int64
	db.Model(&model.Course{}).Count(&courseCount)
	if courseCount > 0 {
		log.Println("已有数据，跳过导入")
		return
	}

	course := &model.Course{
		Title:          "Web 渗透入门",
		Description:    "从 HTTP basics 到常见注入漏洞的入门课",
		Level:          model.Beginner,
		Category:       "web",
		InstructorName: "k0try",
		Point:          100,
	}
	if err := db.Create(course).Error; err != nil {
		log.Fatalf("课程导入失败: %v", err)
	}
	modules := []model.CourseModule{
		{CourseID: course.ID, Title: "HTTP 协议速览", Duration: 12.5, Order: 1},
		{CourseID: course.ID, Title: "SQL 注入原理", Duration: 18, Order: 2},
		{CourseID: course.ID, Title: "XSS 与 CSRF", Duration: 15, Order: 3},
	}
	if err := db.Create(&modules).Error; err != nil {
		log.Fatalf("模块导入失败: %v", err)
	}

	quiz := &model.Quiz{Title: "Web 安全基础测验", Type: model.QuizMCQ}
	if err := db.Create(quiz).Error; err != nil {
		log.Fatalf("测验导入失败: %v", err)
	}
	questions := []model.QuizQuestion{
		{
			QuizID:   quiz.ID,
			Question: "哪个 HTTP 方法约定为幂等？",
			Options:  []string{"POST", "GET", "PATCH", "CONNECT"},
			Answer:   1,
			Point:    10,
		},
		{
			QuizID:   quiz.ID,
			Question: "预编译语句主要防御哪类攻击？",
			Options:  []string{"XSS", "CSRF", "SQL 注入", "点击劫持"},
			Answer:   2,
			Point:    10,
		},
	}
	if err := db.Create(&questions).Error; err != nil {
		log.Fatalf("题目导入失败: %v", err)
	}

	now := time.Now()
	event := &model.CTFEvent{
		Title:      "新手夺旗赛",
		StartDate:  now,
		EndDate:    now.Add(7 * 24 * time.Hour),
		Format:     model.Jeopardy,
		Status:     model.CTFActive,
		Categories: []string{"web", "crypto", "misc"},
	}
	if err := db.Create(event).Error; err != nil {
		log.Fatalf("赛事导入失败: %v", err)
	}
	ctfQuestions := []model.CTFQuestion{
		{
			CTFID:      event.ID,
			Title:      "藏在响应头里",
			Category:   "web",
			Difficulty: model.Easy,
			Points:     50,
			FlagHash:   util.HashFlag("flag{header_hunter}"),
		},
		{
			CTFID:      event.ID,
			Title:      "凯撒的遗产",
			Category:   "crypto",
			Difficulty: model.Easy,
			Points:     50,
			FlagHash:   util.HashFlag("flag{rot13_is_not_encryption}"),
		},
	}
	if err := db.Create(&ctfQuestions).Error; err != nil {
		log.Fatalf("赛题导入失败: %v", err)
	}

	log.Println("演示数据导入完成")
}
