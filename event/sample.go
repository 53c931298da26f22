package event

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

const (
	sampleRegion  = "us-east-1"
	sampleAccount = "123456789012"
)

var samples = map[string]func(now time.Time) any{
	"sqs":          sqsSample,
	"sns":          snsSample,
	"s3":           s3Sample,
	"apigateway":   apiGatewaySample,
	"apigatewayv2": apiGatewayV2Sample,
	"schedule":     scheduleSample,
}

// Names lists the built-in sample events.
func Names() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample renders the named sample event as indented JSON.
func Sample(name string) ([]byte, error) {
	gen, ok := samples[name]
	if !ok {
		return nil, fmt.Errorf("event: unknown sample %q (available: %v)", name, Names())
	}
	b, err := json.MarshalIndent(gen(time.Now().UTC().Truncate(time.Second)), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}
	return b, nil
}

func sqsSample(now time.Time) any {
	return events.SQSEvent{
		Records: []events.SQSMessage{{
			MessageId:     uuid.NewString(),
			ReceiptHandle: "MessageReceiptHandle",
			Body:          "Hello from SQS!",
			Attributes: map[string]string{
				"ApproximateReceiveCount": "1",
				"SentTimestamp":           fmt.Sprint(now.UnixMilli()),
			},
			EventSource:    "aws:sqs",
			EventSourceARN: "arn:aws:sqs:" + sampleRegion + ":" + sampleAccount + ":MyQueue",
			AWSRegion:      sampleRegion,
		}},
	}
}

func snsSample(now time.Time) any {
	topic := "arn:aws:sns:" + sampleRegion + ":" + sampleAccount + ":MyTopic"
	return events.SNSEvent{
		Records: []events.SNSEventRecord{{
			EventVersion:         "1.0",
			EventSource:          "aws:sns",
			EventSubscriptionArn: topic + ":" + uuid.NewString(),
			SNS: events.SNSEntity{
				MessageID: uuid.NewString(),
				Type:      "Notification",
				TopicArn:  topic,
				Subject:   "example subject",
				Message:   "example message",
				Timestamp: now,
			},
		}},
	}
}

func s3Sample(now time.Time) any {
	return events.S3Event{
		Records: []events.S3EventRecord{{
			EventVersion: "2.1",
			EventSource:  "aws:s3",
			AWSRegion:    sampleRegion,
			EventTime:    now,
			EventName:    "ObjectCreated:Put",
			S3: events.S3Entity{
				SchemaVersion:   "1.0",
				ConfigurationID: "testConfigRule",
				Bucket: events.S3Bucket{
					Name: "example-bucket",
					Arn:  "arn:aws:s3:::example-bucket",
				},
				Object: events.S3Object{
					Key:  "test/key",
					Size: 1024,
					ETag: "0123456789abcdef0123456789abcdef",
				},
			},
		}},
	}
}

func apiGatewaySample(now time.Time) any {
	return events.APIGatewayProxyRequest{
		Resource:   "/{proxy+}",
		Path:       "/hello",
		HTTPMethod: "POST",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		QueryStringParameters: map[string]string{"name": "me"},
		PathParameters:        map[string]string{"proxy": "hello"},
		Body:                  `{"test":"body"}`,
		RequestContext: events.APIGatewayProxyRequestContext{
			AccountID:    sampleAccount,
			Stage:        "prod",
			RequestID:    uuid.NewString(),
			HTTPMethod:   "POST",
			ResourcePath: "/{proxy+}",
		},
	}
}

func apiGatewayV2Sample(now time.Time) any {
	return events.APIGatewayV2HTTPRequest{
		Version:        "2.0",
		RouteKey:       "$default",
		RawPath:        "/hello",
		RawQueryString: "name=me",
		Headers: map[string]string{
			"content-type": "application/json",
		},
		Body: `{"test":"body"}`,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			AccountID: sampleAccount,
			APIID:     "api-id",
			Stage:     "$default",
			RequestID: uuid.NewString(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    "POST",
				Path:      "/hello",
				Protocol:  "HTTP/1.1",
				SourceIP:  "127.0.0.1",
				UserAgent: "lambda-local",
			},
		},
	}
}

func scheduleSample(now time.Time) any {
	return events.CloudWatchEvent{
		Version:    "0",
		ID:         uuid.NewString(),
		DetailType: "Scheduled Event",
		Source:     "aws.events",
		AccountID:  sampleAccount,
		Time:       now,
		Region:     sampleRegion,
		Resources:  []string{"arn:aws:events:" + sampleRegion + ":" + sampleAccount + ":rule/my-schedule"},
		Detail:     json.RawMessage(`{}`),
	}
}
