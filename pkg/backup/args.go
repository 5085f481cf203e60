package backup

import "strconv"

// BuildArgs computes the arguments vector passed to the pg_s3_backup binary
// inside the job container. The flag set is the invocation contract of the
// pg-s3-backup image.
func BuildArgs(opts RunOpts, target Target) []string {
	args := []string{
		"--host", target.Host,
		"--port", strconv.Itoa(target.Port),
		"--dbname", target.Dbname,
		"--user", target.User,
		"--bucket", opts.Bucket,
		"--aws-profile", opts.AWSProfile,
		"--aws-region", opts.AWSRegion,
	}

	if target.All {
		args = append(args, "--all")
	}

	if target.Prefix != "" {
		args = append(args, "--prefix", target.Prefix)
	}

	if opts.AWSEndpointURL != "" {
		args = append(args, "--aws-endpoint-url", opts.AWSEndpointURL)
	}

	if opts.Compress {
		args = append(args, "--compress")
	}

	if opts.KeepLocal {
		args = append(args, "--keep-local")
	}

	return args
}
