// internal/repository/mock_gen.go
package repository

//go:generate mockgen -source=./survey.go -destination=../mocks/mock_survey_repository.go -package=mocks SurveyRepositoryIface
//go:generate mockgen -source=./question.go -destination=../mocks/mock_question_repository.go -package=mocks QuestionRepositoryIface
//go:generate mockgen -source=./response.go -destination=../mocks/mock_response_repository.go -package=mocks ResponseRepositoryIface
