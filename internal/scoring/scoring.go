// Package scoring 评分校验与作品分数聚合
package scoring

import (
	"context"
	"fmt"

	"hackathon-platform/internal/model"
	"hackathon-platform/internal/store"
)

const MaxScore = 100

// Compute 校验评分维度并返回最终分数。
// 赛事定义了评分维度时每个维度都必须给分且在 [0, max_score] 内；
// 未直接给出 score 时取各维度分数之和（不做平均或缩放）
func Compute(e *model.Event, score *float64, criteria map[string]float64) (float64, error) {
	for id := range criteria {
		if _, ok := e.Criterion(id); !ok {
			return 0, &model.FieldError{Field: id, Reason: "不是该赛事的评分维度"}
		}
	}

	var sum float64
	for _, c := range e.JudgingCriteria {
		v, ok := criteria[c.ID]
		if !ok {
			return 0, &model.FieldError{Field: c.ID, Reason: "缺少该维度的分数"}
		}
		if v < 0 || v > c.MaxScore {
			return 0, &model.FieldError{Field: c.ID, Reason: fmt.Sprintf("分数必须在 0 到 %g 之间", c.MaxScore)}
		}
		sum += v
	}

	if score != nil {
		if *score < 0 || *score > MaxScore {
			return 0, &model.FieldError{Field: "score", Reason: "分数必须在 0 到 100 之间"}
		}
		return *score, nil
	}
	if len(e.JudgingCriteria) == 0 {
		return 0, &model.FieldError{Field: "score", Reason: "不能为空"}
	}
	return sum, nil
}

// Aggregate 平均分与评分数；没有评分时平均分为 nil
func Aggregate(scores []float64) (*float64, int) {
	if len(scores) == 0 {
		return nil, 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	return &avg, len(scores)
}

// Recalculate 重新聚合作品的全部未删除评分（不区分轮次）并写回作品。
// 调用方应在锁定作品行的同一事务中调用
func Recalculate(ctx context.Context, tx store.Store, submissionID uint) (*float64, int, error) {
	scores, err := tx.ListEvaluationScores(ctx, submissionID)
	if err != nil {
		return nil, 0, err
	}
	avg, total := Aggregate(scores)
	if err := tx.UpdateSubmissionScores(ctx, submissionID, avg, total); err != nil {
		return nil, 0, err
	}
	return avg, total, nil
}
