package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run the NetBox webhook receiver on AWS Lambda",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "http",
		Short: "Handle API Gateway or function URL requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambdaHTTP(cmd)
		},
	})

	bindEnvMap(cmd, lambdaEnvMapString)
	return cmd
}

func runLambdaHTTP(cmd *cobra.Command) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...")
	lambda.StartWithOptions(rt.HandleEvent,
		lambda.WithContext(cmd.Context()))
	return nil
}
