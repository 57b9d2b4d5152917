package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"vlmbench/internal/checkpoint"
	"vlmbench/internal/oracle"
	"vlmbench/internal/pipeline"
	"vlmbench/internal/prompt"
)

// Step and channel names shared by the task pipelines.
const (
	StepTranslate = "translate"
	StepSummarize = "summarize"
	StepClassify  = "classify"
	StepCaption   = "caption"
	StepAnswer    = "answer"
	StepRefine    = "refine"
	StepScore     = "score"

	ChannelTranslate = "translate"
	ChannelRefine    = "refine"
)

// LanguageCN marks metadata annotated in Chinese.
const LanguageCN = "cn"

const summarizeTemperature = 0.6

// translateStep yields the English annotation: an oracle translation for
// Chinese metadata, the compact label itself otherwise.
func translateStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepTranslate, Channel: ChannelTranslate, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		compact, err := json.Marshal(s.Item.Decision.Label.Compact())
		if err != nil {
			return oracle.Failure(err), err
		}
		if env.Language != LanguageCN {
			return oracle.Structured(compact), nil
		}
		text, err := prompt.Render(ctx, prompt.Translate(compact))
		if err != nil {
			return oracle.Failure(err), err
		}
		return env.Oracle.GenerateFromText(ctx, text, oracle.WithStep(StepTranslate))
	}}
}

func summarizeStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepSummarize, Channel: checkpoint.PrimaryName, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		caseEN, _ := s.Value(StepTranslate)
		text, err := prompt.Render(ctx, prompt.Summarize(caseEN.JSON()))
		if err != nil {
			return oracle.Failure(err), err
		}
		return env.Oracle.GenerateFromText(ctx, text, oracle.WithStep(StepSummarize), oracle.WithTemperature(summarizeTemperature))
	}}
}

func classifyTextStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepClassify, Channel: checkpoint.PrimaryName, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		caseEN, _ := s.Value(StepTranslate)
		text, err := prompt.Render(ctx, prompt.ClassifyText(caseEN.JSON()))
		if err != nil {
			return oracle.Failure(err), err
		}
		return env.Oracle.GenerateFromText(ctx, text, oracle.WithStep(StepClassify), oracle.Expect(oracle.ShapeList))
	}}
}

func classifyImageStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepClassify, Channel: checkpoint.PrimaryName, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		text, err := prompt.Render(ctx, prompt.ClassifyImage())
		if err != nil {
			return oracle.Failure(err), err
		}
		return env.Oracle.GenerateFromImageAndText(ctx, imageFor(env, s), text, oracle.WithStep(StepClassify), oracle.Expect(oracle.ShapeList))
	}}
}

func captionImageStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepCaption, Channel: checkpoint.PrimaryName, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		text, err := prompt.Render(ctx, prompt.CaptionImage())
		if err != nil {
			return oracle.Failure(err), err
		}
		return env.Oracle.GenerateFromImageAndText(ctx, imageFor(env, s), text, oracle.WithStep(StepCaption))
	}}
}

// Question is one benchmark VQA entry.
type Question struct {
	QuestionType string          `json:"question_type"`
	Question     string          `json:"question"`
	Choice       json.RawMessage `json:"choice"`
	Answer       string          `json:"answer"`
	Reason       string          `json:"reason"`
}

// AnsweredQuestion is a Question with the model's answer. A failed call
// leaves AIAnswer nil and puts the error in AIReason.
type AnsweredQuestion struct {
	Question
	AIAnswer *string `json:"AI_answer"`
	AIReason string  `json:"AI_reason"`
}

type answerReply struct {
	Answer string `json:"answer"`
	Reason string `json:"reason"`
}

// answerStep asks every question of an item in turn. Per-question failures
// are recorded inline and never fail the item.
func answerStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepAnswer, Channel: checkpoint.PrimaryName, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		var questions []Question
		if err := json.Unmarshal(s.Item.Input, &questions); err != nil {
			err = fmt.Errorf("decode questions: %w", err)
			return oracle.Failure(err), err
		}
		image := imageFor(env, s)
		answered := make([]AnsweredQuestion, 0, len(questions))
		for _, q := range questions {
			out := AnsweredQuestion{Question: q}
			text, err := prompt.Render(ctx, prompt.AnswerQuestion(q.Question, q.Choice, q.QuestionType))
			if err == nil {
				var value oracle.Value
				value, err = env.Oracle.GenerateFromImageAndText(ctx, image, text, oracle.WithStep(StepAnswer))
				if err == nil {
					var reply answerReply
					if err = value.Decode(&reply); err == nil {
						out.AIAnswer = &reply.Answer
						out.AIReason = reply.Reason
					}
				}
			}
			if err != nil {
				env.logger().Debug("question failed", "id", s.Item.ID, "error", err)
				out.AIReason = err.Error()
			}
			answered = append(answered, out)
		}
		return oracle.StructuredFrom(answered)
	}}
}

func refineStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepRefine, Channel: ChannelRefine, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		text, err := prompt.Render(ctx, prompt.Refine(s.Item.Input))
		if err != nil {
			return oracle.Failure(err), err
		}
		return env.Oracle.GenerateFromText(ctx, text, oracle.WithStep(StepRefine), oracle.Expect(oracle.ShapeList))
	}}
}

func scoreStep(env Env) pipeline.Step {
	return pipeline.Step{Name: StepScore, Channel: checkpoint.PrimaryName, Run: func(ctx context.Context, s *pipeline.State) (oracle.Value, error) {
		caseEN, _ := s.Value(StepTranslate)
		var translated struct {
			Items json.RawMessage `json:"items"`
		}
		if err := caseEN.Decode(&translated); err != nil || len(translated.Items) == 0 {
			err = fmt.Errorf("translated annotation has no items")
			return oracle.Failure(err), err
		}
		refined, _ := s.Value(StepRefine)
		text, err := prompt.Render(ctx, prompt.Score(translated.Items, refined.JSON()))
		if err != nil {
			return oracle.Failure(err), err
		}
		return env.Oracle.GenerateFromText(ctx, text, oracle.WithStep(StepScore))
	}}
}

func imageFor(env Env, s *pipeline.State) string {
	if s.Item.ImagePath != "" {
		return s.Item.ImagePath
	}
	return env.imagePath(s.Item.ID)
}
