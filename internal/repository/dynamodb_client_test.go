package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	queryOut     *dynamodb.QueryOutput
	queryErr     error
	txErr        error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
	lastQueryIn  *dynamodb.QueryInput
	lastTxInput  *dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	return f.queryOut, f.queryErr
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTxInput = in
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

func makeItem(pk, sk, text, answer, status string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":     &types.AttributeValueMemberS{Value: pk},
		"SK":     &types.AttributeValueMemberS{Value: sk},
		"text":   &types.AttributeValueMemberS{Value: text},
		"answer": &types.AttributeValueMemberS{Value: answer},
		"status": &types.AttributeValueMemberS{Value: status},
	}
}

func makeMetaItem(pk string, turns int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: pk},
		"SK":    &types.AttributeValueMemberS{Value: skMeta},
		"turns": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", turns)},
	}
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestGetRoadmapCount_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: makeMetaItem("CONV#abc", 7)}}
	c := mustNewClient(t, db)
	turns, err := c.GetRoadmapCount(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, 7, turns)
	require.NotNil(t, db.lastGetInput)
}

func TestGetRoadmapCount_MissingMeta(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	c := mustNewClient(t, db)
	turns, err := c.GetRoadmapCount(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, 0, turns)
}

func TestGetRoadmapCount_GetItemError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	c := mustNewClient(t, db)
	_, err := c.GetRoadmapCount(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetRoadmapCount")
}

func TestGetRoadmapCount_MalformedTurns(t *testing.T) {
	db := &fakeDynamo{
		getOut: &dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{
				"PK":    &types.AttributeValueMemberS{Value: "CONV#abc"},
				"SK":    &types.AttributeValueMemberS{Value: skMeta},
				"turns": &types.AttributeValueMemberS{Value: "bad"},
			},
		},
	}
	c := mustNewClient(t, db)
	_, err := c.GetRoadmapCount(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode turns")
}

func TestGetRecentMessages_HappyPath(t *testing.T) {
	db := &fakeDynamo{
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				makeItem("CONV#abc", msgSK(time.Now()), "I want to learn Go", "", "noted"),
			},
		},
	}
	c := mustNewClient(t, db)
	msgs, err := c.GetRecentMessages(context.Background(), "abc", 20)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "I want to learn Go", msgs[0].Text)
}

func TestGetRecentMessages_EmptyResult(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	c := mustNewClient(t, db)
	msgs, err := c.GetRecentMessages(context.Background(), "abc", 20)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestGetRecentMessages_ZeroLimit(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	msgs, err := c.GetRecentMessages(context.Background(), "abc", 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.Nil(t, db.lastQueryIn, "zero limit must not hit DynamoDB")
}

func TestGetRecentMessages_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)
	_, err := c.GetRecentMessages(context.Background(), "abc", 20)
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetRecentMessages")
}

func TestGetRecentMessages_MalformedItem_MissingText(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "CONV#abc"},
		"SK": &types.AttributeValueMemberS{Value: "MSG#ts"},
	}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	c := mustNewClient(t, db)
	_, err := c.GetRecentMessages(context.Background(), "abc", 20)
	require.Error(t, err)
	require.Contains(t, err.Error(), "text")
}

func TestGetRecentMessages_KeyConditionExpression(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	c := mustNewClient(t, db)
	_, err := c.GetRecentMessages(context.Background(), "abc", 20)
	require.NoError(t, err)
	require.Equal(t, "PK = :pk AND begins_with(SK, :prefix)", *db.lastQueryIn.KeyConditionExpression)
	require.False(t, *db.lastQueryIn.ScanIndexForward)
	require.Equal(t, int32(20), *db.lastQueryIn.Limit)
}

func TestGetRecentMessages_PreservesNewestFirstOrder(t *testing.T) {
	db := &fakeDynamo{
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				makeItem("CONV#abc", "MSG#2026-02-27T12:00:00Z", "newer", "", "noted"),
				makeItem("CONV#abc", "MSG#2026-02-27T11:00:00Z", "older", "", "noted"),
			},
		},
	}
	c := mustNewClient(t, db)
	msgs, err := c.GetRecentMessages(context.Background(), "abc", 20)
	require.NoError(t, err)
	require.Equal(t, "newer", msgs[0].Text)
	require.Equal(t, "older", msgs[1].Text)
}

func TestSaveRoadmapTurn_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.SaveRoadmapTurn(context.Background(), "abc", "I want to learn Rust", "Step 1: ...", 2)
	require.NoError(t, err)
	require.NotNil(t, db.lastTxInput)
	require.Len(t, db.lastTxInput.TransactItems, 2)

	msgPut := db.lastTxInput.TransactItems[0].Put
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *msgPut.ConditionExpression)
	require.Equal(t, "I want to learn Rust", msgPut.Item["text"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "Step 1: ...", msgPut.Item["answer"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "complete", msgPut.Item["status"].(*types.AttributeValueMemberS).Value)

	metaPut := db.lastTxInput.TransactItems[1].Put
	require.Equal(t, "2", metaPut.Item["turns"].(*types.AttributeValueMemberN).Value)
}

func TestSaveRoadmapTurn_DynamoError(t *testing.T) {
	db := &fakeDynamo{txErr: errors.New("transaction canceled")}
	c := mustNewClient(t, db)
	err := c.SaveRoadmapTurn(context.Background(), "abc", "I want to learn Rust", "Step 1: ...", 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SaveRoadmapTurn")
}

func TestSaveNotedMessage_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.SaveNotedMessage(context.Background(), "abc", "hello there", "greeting, not a roadmap request")
	require.NoError(t, err)
	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *db.lastPutInput.ConditionExpression)
	require.Equal(t, "hello there", db.lastPutInput.Item["text"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "greeting, not a roadmap request", db.lastPutInput.Item["reason"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "noted", db.lastPutInput.Item["status"].(*types.AttributeValueMemberS).Value)
}

func TestSaveNotedMessage_DoesNotTouchMeta(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.SaveNotedMessage(context.Background(), "abc", "hello there", "greeting")
	require.NoError(t, err)
	require.Nil(t, db.lastTxInput)
	require.Nil(t, db.lastGetInput)
}

func TestSaveNotedMessage_DynamoError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	c := mustNewClient(t, db)
	err := c.SaveNotedMessage(context.Background(), "abc", "hello there", "greeting")
	require.Error(t, err)
	require.Contains(t, err.Error(), "SaveNotedMessage")
}

func TestNewMessage_Fields(t *testing.T) {
	msg := NewMessage("conv-1", "I want to learn Go", "noted")
	require.Equal(t, "CONV#conv-1", msg.PK)
	require.Contains(t, msg.SK, "MSG#")
	require.Equal(t, "I want to learn Go", msg.Text)
	require.Equal(t, "noted", msg.Status)
	require.Greater(t, msg.TTL, int64(0))
}

func TestNewConversationMeta_Fields(t *testing.T) {
	meta := NewConversationMeta("conv-2", 5)
	require.Equal(t, "CONV#conv-2", meta.PK)
	require.Equal(t, skMeta, meta.SK)
	require.Equal(t, 5, meta.Turns)
	require.NotEmpty(t, meta.LastActivity)
}

func TestConvPK(t *testing.T) {
	require.Equal(t, "CONV#my-conv", convPK("my-conv"))
}

func TestMsgSK(t *testing.T) {
	ts := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	sk := msgSK(ts)
	require.Contains(t, sk, "MSG#")
	require.Contains(t, sk, fmt.Sprintf("%d", ts.Year()))
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "test-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
