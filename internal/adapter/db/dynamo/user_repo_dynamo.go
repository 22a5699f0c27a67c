package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"dynamo-user-service/internal/domain/user"
	apperrors "dynamo-user-service/pkg/errors"
)

// API is the subset of *dynamodb.Client the repository uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

const (
	attrID           = "id"
	attrName         = "name"
	attrEmailAddress = "email_address"

	tableActiveTimeout = 30 * time.Second
)

// UserItem is the on-table shape of a user.
type UserItem struct {
	ID           string `dynamodbav:"id"`
	Name         string `dynamodbav:"name"`
	EmailAddress string `dynamodbav:"email_address"`
}

// UserRepoDynamo implements the user Repository on a single DynamoDB table keyed by id.
type UserRepoDynamo struct {
	client API
	table  string
	log    *zap.Logger
}

// NewUserRepoDynamo creates a repository bound to the given table.
func NewUserRepoDynamo(client API, table string, log *zap.Logger) *UserRepoDynamo {
	return &UserRepoDynamo{client: client, table: table, log: log}
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrID: &types.AttributeValueMemberS{Value: id},
	}
}

func toDomain(item UserItem) *user.User {
	return &user.User{
		ID:           item.ID,
		Name:         item.Name,
		EmailAddress: item.EmailAddress,
	}
}

// Create writes a new item. The put is conditional so an existing id is never overwritten.
func (r *UserRepoDynamo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	item, err := attributevalue.MarshalMap(UserItem{
		ID:           u.ID,
		Name:         u.Name,
		EmailAddress: u.EmailAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": attrID},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			r.log.Warn("user id already taken", zap.String("id", u.ID))
			return nil, apperrors.NewAlreadyExistsError("user", u.ID, err)
		}
		r.log.Error("failed to put user item", zap.Error(err), zap.String("id", u.ID))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in dynamodb", zap.String("id", u.ID))
	created := *u
	return &created, nil
}

// GetByID reads one item. A missing item yields nil, nil.
func (r *UserRepoDynamo) GetByID(ctx context.Context, id string) (*user.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       keyOf(id),
	})
	if err != nil {
		r.log.Error("failed to get user item", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(out.Item) == 0 {
		r.log.Debug("user not found", zap.String("id", id))
		return nil, nil
	}

	var item UserItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return toDomain(item), nil
}

// Update SETs the patch fields on the item and returns the full item as stored afterwards.
// Like UpdateItem itself, this creates the item when the id does not exist yet.
func (r *UserRepoDynamo) Update(ctx context.Context, id string, patch user.UserPatch) (*user.User, error) {
	in := &dynamodb.UpdateItemInput{
		TableName:    aws.String(r.table),
		Key:          keyOf(id),
		ReturnValues: types.ReturnValueAllNew,
	}

	if !patch.IsEmpty() {
		var sets []string
		names := map[string]string{}
		values := map[string]types.AttributeValue{}

		if patch.Name != nil {
			sets = append(sets, "#name = :name")
			names["#name"] = attrName
			values[":name"] = &types.AttributeValueMemberS{Value: *patch.Name}
		}
		if patch.EmailAddress != nil {
			sets = append(sets, "#email_address = :email_address")
			names["#email_address"] = attrEmailAddress
			values[":email_address"] = &types.AttributeValueMemberS{Value: *patch.EmailAddress}
		}

		in.UpdateExpression = aws.String("SET " + strings.Join(sets, ", "))
		in.ExpressionAttributeNames = names
		in.ExpressionAttributeValues = values
	}

	out, err := r.client.UpdateItem(ctx, in)
	if err != nil {
		r.log.Error("failed to update user item", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	item := UserItem{ID: id}
	if len(out.Attributes) > 0 {
		if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user: %w", err)
		}
	}

	r.log.Info("user updated in dynamodb", zap.String("id", id))
	return toDomain(item), nil
}

// Delete removes the item. DynamoDB treats deleting a missing key as success.
func (r *UserRepoDynamo) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       keyOf(id),
	})
	if err != nil {
		r.log.Error("failed to delete user item", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	r.log.Info("user deleted in dynamodb", zap.String("id", id))
	return nil
}

// List scans the whole table.
func (r *UserRepoDynamo) List(ctx context.Context) ([]user.User, error) {
	users := []user.User{}

	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			r.log.Error("failed to scan users", zap.Error(err))
			return nil, fmt.Errorf("failed to list users: %w", err)
		}

		var items []UserItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal users: %w", err)
		}
		for _, item := range items {
			users = append(users, *toDomain(item))
		}
	}

	return users, nil
}

// EnsureSchema creates the table when it does not exist and waits until it is active.
func (r *UserRepoDynamo) EnsureSchema(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.table),
	})
	if err == nil {
		r.log.Debug("dynamodb table present", zap.String("table", r.table))
		return nil
	}

	var rnf *types.ResourceNotFoundException
	if !errors.As(err, &rnf) {
		return fmt.Errorf("failed to describe table %s: %w", r.table, err)
	}

	r.log.Info("creating dynamodb table", zap.String("table", r.table))

	_, err = r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrID), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrID), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("failed to create table %s: %w", r.table, err)
		}
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.table),
	}, tableActiveTimeout); err != nil {
		return fmt.Errorf("failed waiting for table %s: %w", r.table, err)
	}

	r.log.Info("dynamodb table ready", zap.String("table", r.table))
	return nil
}
