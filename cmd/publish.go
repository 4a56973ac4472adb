package cmd

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	publishBucket   string
	publishPrefix   string
	publishRegion   string
	publishEndpoint string
)

func init() {
	addConfigFlags(publishCmd)
	publishCmd.Flags().StringVar(&publishBucket, "bucket", "", "destination S3 bucket")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "", "key prefix, defaults to the folder name")
	publishCmd.Flags().StringVar(&publishRegion, "region", "us-east-1", "AWS region")
	publishCmd.Flags().StringVar(&publishEndpoint, "endpoint", "", "custom S3 endpoint, e.g. http://localhost:9000")
	_ = publishCmd.MarkFlagRequired("bucket")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish [folder]",
	Short: "Uploads an output folder to S3",
	Long:  `Uploads every file of an output folder, manifest included, to an S3 bucket.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := folder(cfg)
		if len(args) == 1 {
			dir = args[0]
		}
		prefix := publishPrefix
		if prefix == "" {
			prefix = filepath.Base(dir)
		}

		awsCfg := &aws.Config{Region: aws.String(publishRegion)}
		if publishEndpoint != "" {
			awsCfg.Endpoint = aws.String(publishEndpoint)
			awsCfg.S3ForcePathStyle = aws.Bool(true)
		}
		sess, err := session.NewSession(awsCfg)
		if err != nil {
			return errors.Wrap(err, "creating AWS session")
		}
		n, err := publish(cmd.Context(), s3manager.NewUploader(sess), dir, publishBucket, prefix)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"bucket": publishBucket, "prefix": prefix}).Infof("uploaded %v files", n)
		return nil
	},
}

type uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// publish uploads the files under dir to bucket, keyed by prefix plus their
// slash separated path relative to dir.
func publish(ctx context.Context, up uploader, dir, bucket, prefix string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var n int
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		key := path.Join(prefix, filepath.ToSlash(rel))
		_, err = up.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   f,
		})
		if err != nil {
			return errors.Wrapf(err, "uploading %v", key)
		}
		log.WithFields(log.Fields{"key": key}).Debug("uploaded")
		n++
		return nil
	})
	return n, errors.Wrapf(err, "publishing %v", dir)
}
