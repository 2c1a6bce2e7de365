// Package metrics publishes portal metrics to CloudWatch.
// file: metrics/metrics.go
package metrics

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"

	"hspace-portal/logger"
)

// Units used by the portal.
const (
	UnitCount        = cloudwatch.StandardUnitCount
	UnitMilliseconds = cloudwatch.StandardUnitMilliseconds
)

// Publisher records a single metric datum.
type Publisher interface {
	PutMetric(name string, value float64, unit string)
}

// Noop discards every metric; used when metrics are disabled and in tests.
type Noop struct{}

// PutMetric does nothing.
func (Noop) PutMetric(string, float64, string) {}

// CloudWatchPublisher sends metrics under one namespace with a Service dimension.
type CloudWatchPublisher struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
	service   string
}

// NewCloudWatchPublisher builds a publisher from the default AWS session chain.
func NewCloudWatchPublisher(namespace, service string) (*CloudWatchPublisher, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return NewCloudWatchPublisherWithClient(cloudwatch.New(sess), namespace, service), nil
}

// NewCloudWatchPublisherWithClient wraps an existing CloudWatch client.
func NewCloudWatchPublisherWithClient(client cloudwatchiface.CloudWatchAPI, namespace, service string) *CloudWatchPublisher {
	return &CloudWatchPublisher{client: client, namespace: namespace, service: service}
}

// PutMetric pushes one datum. Failures are logged, never returned.
func (p *CloudWatchPublisher) PutMetric(name string, value float64, unit string) {
	_, err := p.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(name),
				Dimensions: []*cloudwatch.Dimension{
					{
						Name:  aws.String("Service"),
						Value: aws.String(p.service),
					},
				},
				Timestamp: aws.Time(time.Now()),
				Value:     aws.Float64(value),
				Unit:      aws.String(unit),
			},
		},
	})

	if err != nil {
		logger.Error.Printf("[PutMetric] CloudWatch metric failed (%s): %v", name, err)
	}
}
