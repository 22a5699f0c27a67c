package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dynamo-user-service/internal/domain/user"
	apperrors "dynamo-user-service/pkg/errors"
)

// MockAPI is a testify mock of the DynamoDB client surface.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.UpdateItemOutput), args.Error(1)
}

func (m *MockAPI) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

func (m *MockAPI) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func (m *MockAPI) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

func (m *MockAPI) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.CreateTableOutput), args.Error(1)
}

func setupRepo(t *testing.T) (*UserRepoDynamo, *MockAPI) {
	api := new(MockAPI)
	return NewUserRepoDynamo(api, "user", zaptest.NewLogger(t)), api
}

func item(id, name, email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":            &types.AttributeValueMemberS{Value: id},
		"name":          &types.AttributeValueMemberS{Value: name},
		"email_address": &types.AttributeValueMemberS{Value: email},
	}
}

func strPtr(s string) *string { return &s }

func TestUserRepoDynamo_Create(t *testing.T) {
	t.Run("conditional put", func(t *testing.T) {
		repo, api := setupRepo(t)
		ctx := context.Background()

		api.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			return aws.ToString(in.TableName) == "user" &&
				aws.ToString(in.ConditionExpression) == "attribute_not_exists(#id)" &&
				assert.ObjectsAreEqual(item("u1", "A", "a@x.com"), in.Item)
		})).Return(&dynamodb.PutItemOutput{}, nil)

		got, err := repo.Create(ctx, &user.User{ID: "u1", Name: "A", EmailAddress: "a@x.com"})

		require.NoError(t, err)
		assert.Equal(t, &user.User{ID: "u1", Name: "A", EmailAddress: "a@x.com"}, got)
		api.AssertExpectations(t)
	})

	t.Run("id collision", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("PutItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")})

		_, err := repo.Create(context.Background(), &user.User{ID: "u1"})

		var exists *apperrors.AlreadyExistsError
		assert.ErrorAs(t, err, &exists)
	})

	t.Run("nil user", func(t *testing.T) {
		repo, _ := setupRepo(t)
		_, err := repo.Create(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestUserRepoDynamo_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			k, ok := in.Key["id"].(*types.AttributeValueMemberS)
			return ok && k.Value == "u1"
		})).Return(&dynamodb.GetItemOutput{Item: item("u1", "A", "a@x.com")}, nil)

		got, err := repo.GetByID(context.Background(), "u1")

		require.NoError(t, err)
		assert.Equal(t, &user.User{ID: "u1", Name: "A", EmailAddress: "a@x.com"}, got)
	})

	t.Run("missing", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		got, err := repo.GetByID(context.Background(), "nope")

		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("store error", func(t *testing.T) {
		repo, api := setupRepo(t)
		storeErr := errors.New("throughput exceeded")
		api.On("GetItem", mock.Anything, mock.Anything).Return(nil, storeErr)

		_, err := repo.GetByID(context.Background(), "u1")

		assert.ErrorIs(t, err, storeErr)
	})
}

func TestUserRepoDynamo_Update(t *testing.T) {
	t.Run("sets only supplied fields", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			_, hasEmail := in.ExpressionAttributeValues[":email_address"]
			return aws.ToString(in.UpdateExpression) == "SET #name = :name" &&
				in.ReturnValues == types.ReturnValueAllNew &&
				in.ExpressionAttributeNames["#name"] == "name" &&
				!hasEmail
		})).Return(&dynamodb.UpdateItemOutput{Attributes: item("u1", "B", "a@x.com")}, nil)

		got, err := repo.Update(context.Background(), "u1", user.UserPatch{Name: strPtr("B")})

		require.NoError(t, err)
		assert.Equal(t, &user.User{ID: "u1", Name: "B", EmailAddress: "a@x.com"}, got)
		api.AssertExpectations(t)
	})

	t.Run("both fields", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			return aws.ToString(in.UpdateExpression) == "SET #name = :name, #email_address = :email_address"
		})).Return(&dynamodb.UpdateItemOutput{Attributes: item("u1", "B", "b@x.com")}, nil)

		got, err := repo.Update(context.Background(), "u1", user.UserPatch{Name: strPtr("B"), EmailAddress: strPtr("b@x.com")})

		require.NoError(t, err)
		assert.Equal(t, "b@x.com", got.EmailAddress)
	})

	t.Run("empty patch sends no expression", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			return in.UpdateExpression == nil && in.ExpressionAttributeValues == nil
		})).Return(&dynamodb.UpdateItemOutput{}, nil)

		got, err := repo.Update(context.Background(), "u1", user.UserPatch{})

		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
	})
}

func TestUserRepoDynamo_Delete(t *testing.T) {
	repo, api := setupRepo(t)
	api.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		k, ok := in.Key["id"].(*types.AttributeValueMemberS)
		return ok && k.Value == "u1"
	})).Return(&dynamodb.DeleteItemOutput{}, nil)

	assert.NoError(t, repo.Delete(context.Background(), "u1"))
	api.AssertExpectations(t)
}

func TestUserRepoDynamo_List(t *testing.T) {
	repo, api := setupRepo(t)
	lastKey := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "1"}}

	api.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.ScanOutput{
		Items:            []map[string]types.AttributeValue{item("1", "A", "a@x.com")},
		LastEvaluatedKey: lastKey,
	}, nil).Once()
	api.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{item("2", "B", "b@x.com")},
	}, nil).Once()

	got, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []user.User{
		{ID: "1", Name: "A", EmailAddress: "a@x.com"},
		{ID: "2", Name: "B", EmailAddress: "b@x.com"},
	}, got)
	api.AssertExpectations(t)
}

func TestUserRepoDynamo_EnsureSchema(t *testing.T) {
	t.Run("table exists", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("DescribeTable", mock.Anything, mock.Anything).
			Return(&dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil)

		assert.NoError(t, repo.EnsureSchema(context.Background()))
		api.AssertNotCalled(t, "CreateTable", mock.Anything, mock.Anything)
	})

	t.Run("creates missing table", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("DescribeTable", mock.Anything, mock.Anything).
			Return(nil, &types.ResourceNotFoundException{Message: aws.String("no table")}).Once()
		api.On("CreateTable", mock.Anything, mock.MatchedBy(func(in *dynamodb.CreateTableInput) bool {
			return aws.ToString(in.TableName) == "user" &&
				len(in.KeySchema) == 1 &&
				aws.ToString(in.KeySchema[0].AttributeName) == "id" &&
				in.KeySchema[0].KeyType == types.KeyTypeHash
		})).Return(&dynamodb.CreateTableOutput{}, nil)
		api.On("DescribeTable", mock.Anything, mock.Anything).
			Return(&dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil)

		assert.NoError(t, repo.EnsureSchema(context.Background()))
		api.AssertExpectations(t)
	})

	t.Run("describe failure", func(t *testing.T) {
		repo, api := setupRepo(t)
		api.On("DescribeTable", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

		assert.Error(t, repo.EnsureSchema(context.Background()))
	})
}
