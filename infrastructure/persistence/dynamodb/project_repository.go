// Package dynamodb stores projects in a single DynamoDB table.
//
// Items are keyed PK=USER#<owner>, SK=PROJECT#<id>. A global secondary index
// on GSI1PK=PROJECT#<id> resolves a project id without knowing its owner,
// which is how Forbidden is told apart from NotFound.
package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

const entityType = "PROJECT"

// API is the subset of the DynamoDB client the repository uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ProjectRepository implements ports.ProjectRepository on DynamoDB.
type ProjectRepository struct {
	client    API
	tableName string
	indexName string
	opts      []aggregates.Option
	logger    *zap.Logger
	now       func() time.Time
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a repository over tableName; indexName is the
// project id GSI.
func NewProjectRepository(client API, tableName, indexName string, logger *zap.Logger, opts ...aggregates.Option) *ProjectRepository {
	return &ProjectRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// projectItem is the stored form of a project
type projectItem struct {
	PK                 string `dynamodbav:"PK"`
	SK                 string `dynamodbav:"SK"`
	GSI1PK             string `dynamodbav:"GSI1PK"`
	GSI1SK             string `dynamodbav:"GSI1SK"`
	EntityType         string `dynamodbav:"EntityType"`
	ProjectID          string `dynamodbav:"ProjectID"`
	UserID             string `dynamodbav:"UserID"`
	Name               string `dynamodbav:"Name"`
	TranscriptionModel string `dynamodbav:"TranscriptionModel,omitempty"`
	VisionModel        string `dynamodbav:"VisionModel,omitempty"`
	Image              string `dynamodbav:"Image,omitempty"`
	Content            string `dynamodbav:"Content,omitempty"`
	CreatedAt          string `dynamodbav:"CreatedAt"`
	UpdatedAt          string `dynamodbav:"UpdatedAt"`
	Version            int    `dynamodbav:"Version"`
}

func userKey(userID string) string { return "USER#" + userID }
func projectKey(projectID string) string { return "PROJECT#" + projectID }

func (r *ProjectRepository) key(userID, projectID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userKey(userID)},
		"SK": &types.AttributeValueMemberS{Value: projectKey(projectID)},
	}
}

func toItem(rec aggregates.ProjectRecord) (projectItem, error) {
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return projectItem{}, pkgerrors.NewInternalError("failed to encode content").WithCause(err)
	}
	return projectItem{
		PK:                 userKey(rec.UserID),
		SK:                 projectKey(rec.ID),
		GSI1PK:             projectKey(rec.ID),
		GSI1SK:             "METADATA",
		EntityType:         entityType,
		ProjectID:          rec.ID,
		UserID:             rec.UserID,
		Name:               rec.Name,
		TranscriptionModel: rec.TranscriptionModel,
		VisionModel:        rec.VisionModel,
		Image:              rec.Image,
		Content:            string(content),
		CreatedAt:          rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:          rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Version:            rec.Version,
	}, nil
}

func (it projectItem) record() (aggregates.ProjectRecord, error) {
	rec := aggregates.ProjectRecord{
		ID:                 it.ProjectID,
		UserID:             it.UserID,
		Name:               it.Name,
		TranscriptionModel: it.TranscriptionModel,
		VisionModel:        it.VisionModel,
		Image:              it.Image,
		Version:            it.Version,
	}
	if it.Content != "" {
		if err := json.Unmarshal([]byte(it.Content), &rec.Content); err != nil {
			return rec, pkgerrors.NewInternalError("stored content is not valid JSON").WithCause(err)
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, it.CreatedAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return rec, nil
}

func (it projectItem) summary() ports.ProjectSummary {
	created, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return ports.ProjectSummary{
		ID:                 it.ProjectID,
		Name:               it.Name,
		TranscriptionModel: it.TranscriptionModel,
		VisionModel:        it.VisionModel,
		Image:              it.Image,
		CreatedAt:          created,
		UpdatedAt:          updated,
	}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, project *aggregates.Project) error {
	rec, err := project.Record()
	if err != nil {
		return err
	}
	rec.Version = 1
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	item, err := toItem(rec)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError("project " + rec.ID + " already exists")
		}
		return r.mapError("PutItem", err)
	}

	r.logger.Debug("Project created",
		zap.String("projectID", rec.ID),
		zap.String("userID", rec.UserID),
	)
	project.MarkPersisted(1, rec.UpdatedAt)
	return nil
}

// Load returns the owner's project
func (r *ProjectRepository) Load(ctx context.Context, ownerID string, id valueobjects.ProjectID) (*aggregates.Project, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(ownerID, id.String()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, r.mapError("GetItem", err)
	}
	if result.Item == nil {
		return nil, r.missing(ctx, id.String())
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	rec, err := item.record()
	if err != nil {
		return nil, err
	}
	return aggregates.ReconstructProject(rec, r.opts...)
}

// Save writes the project if the stored version still matches
func (r *ProjectRepository) Save(ctx context.Context, ownerID string, project *aggregates.Project) error {
	rec, err := project.Record()
	if err != nil {
		return err
	}
	if rec.UserID != ownerID {
		return pkgerrors.NewForbiddenError("project belongs to another user")
	}

	expected := rec.Version
	rec.Version++
	rec.UpdatedAt = r.now()

	item, err := toItem(rec)
	if err != nil {
		return err
	}
	// CreatedAt and the keys are never rewritten
	update := expression.Set(expression.Name("GSI1PK"), expression.Value(item.GSI1PK)).
		Set(expression.Name("GSI1SK"), expression.Value(item.GSI1SK)).
		Set(expression.Name("EntityType"), expression.Value(item.EntityType)).
		Set(expression.Name("ProjectID"), expression.Value(item.ProjectID)).
		Set(expression.Name("UserID"), expression.Value(item.UserID)).
		Set(expression.Name("Name"), expression.Value(item.Name)).
		Set(expression.Name("TranscriptionModel"), expression.Value(item.TranscriptionModel)).
		Set(expression.Name("VisionModel"), expression.Value(item.VisionModel)).
		Set(expression.Name("Image"), expression.Value(item.Image)).
		Set(expression.Name("Content"), expression.Value(item.Content)).
		Set(expression.Name("UpdatedAt"), expression.Value(item.UpdatedAt)).
		Set(expression.Name("Version"), expression.Value(item.Version))
	cond := expression.Name("PK").AttributeExists().
		And(expression.Name("Version").Equal(expression.Value(expected)))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 r.key(ownerID, rec.ID),
		UpdateExpression:                    expr.Update(),
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if !errors.As(err, &ccf) {
			return r.mapError("UpdateItem", err)
		}
		if len(ccf.Item) == 0 {
			return r.missing(ctx, rec.ID)
		}
		var current projectItem
		_ = attributevalue.UnmarshalMap(ccf.Item, &current)
		return pkgerrors.NewConflictError("project was modified concurrently").
			WithCode("VERSION_CONFLICT").
			WithDetail("expected", expected).
			WithDetail("actual", current.Version)
	}

	project.MarkPersisted(rec.Version, rec.UpdatedAt)
	return nil
}

// List returns the owner's projects, most recently updated first
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]ports.ProjectSummary, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userKey(ownerID))).
		And(expression.Key("SK").BeginsWith("PROJECT#"))
	proj := expression.NamesList(
		expression.Name("ProjectID"),
		expression.Name("Name"),
		expression.Name("TranscriptionModel"),
		expression.Name("VisionModel"),
		expression.Name("Image"),
		expression.Name("CreatedAt"),
		expression.Name("UpdatedAt"),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	out := []ports.ProjectSummary{}
	var startKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, r.mapError("Query", err)
		}

		var items []projectItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal projects: %w", err)
		}
		for _, it := range items {
			out = append(out, it.summary())
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes the owner's project
func (r *ProjectRepository) Delete(ctx context.Context, ownerID string, id valueobjects.ProjectID) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(ownerID, id.String()),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return r.missing(ctx, id.String())
		}
		return r.mapError("DeleteItem", err)
	}
	return nil
}

// missing explains why the owner's key holds no project: it either does
// not exist at all or belongs to someone else.
func (r *ProjectRepository) missing(ctx context.Context, projectID string) error {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(projectKey(projectID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return r.mapError("Query", err)
	}
	if len(result.Items) > 0 {
		return pkgerrors.NewForbiddenError("project belongs to another user")
	}
	return pkgerrors.NewNotFoundError("project " + projectID)
}

func (r *ProjectRepository) mapError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		r.logger.Error("DynamoDB request failed",
			zap.String("operation", op),
			zap.String("code", code),
			zap.Error(err),
		)
		if code == "ProvisionedThroughputExceededException" || code == "ThrottlingException" ||
			strings.HasPrefix(code, "RequestLimitExceeded") {
			return pkgerrors.NewUnavailableError("dynamodb").WithCause(err)
		}
	}
	return pkgerrors.NewDatabaseError(op, err)
}
