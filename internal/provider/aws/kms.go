// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package aws implements a key provider that keeps the
// key pair inside AWS KMS. The private key never leaves
// the KMS.
package aws

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awskms "github.com/aws/aws-sdk-go/service/kms"
	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/provider"
)

// Credentials represents static AWS credentials:
// access key, secret key and a session token.
type Credentials struct {
	AccessKey    string // The AWS access key
	SecretKey    string // The AWS secret key
	SessionToken string // The AWS session token
}

// Config is a structure containing the AWS KMS configuration.
type Config struct {
	// Endpoint is the HTTP endpoint of the AWS KMS.
	// For example: https://kms.us-east-1.amazonaws.com
	Endpoint string

	// Region is the AWS region.
	Region string

	// Login contains the AWS credentials. If empty,
	// the SDK looks for credentials in the environment,
	// the shared credentials file and the EC2 instance
	// metadata.
	Login Credentials

	// Alias is the name of the key pair. It is mapped
	// to the KMS alias "alias/<Alias>" with all characters
	// not allowed in KMS aliases replaced by '-'.
	Alias string

	// ErrorLog is used to log KMS errors. If nil,
	// slog.Default is used.
	ErrorLog *slog.Logger
}

// EncryptionAlgorithm is the RSA encryption scheme used
// to wrap keys.
const EncryptionAlgorithm = awskms.EncryptionAlgorithmSpecRsaesOaepSha256

// Provider is an AWS KMS key provider.
type Provider struct {
	client *awskms.KMS
	alias  string
	log    *slog.Logger

	lock  sync.Mutex
	keyID string
}

var _ keychain.KeyProvider = (*Provider)(nil)

// Connect returns a new Provider connected to the AWS KMS.
func Connect(config *Config) (*Provider, error) {
	if config.Alias == "" {
		return nil, keychain.NewError(keychain.Usage, "aws: no key alias specified")
	}
	credentials := credentials.NewStaticCredentials(
		config.Login.AccessKey,
		config.Login.SecretKey,
		config.Login.SessionToken,
	)
	if config.Login == (Credentials{}) {
		// Let the SDK look up credentials from the environment,
		// the shared credentials file or the EC2 instance metadata.
		credentials = nil
	}

	session, err := session.NewSessionWithOptions(session.Options{
		Config: aws.Config{
			Endpoint:    aws.String(config.Endpoint),
			Region:      aws.String(config.Region),
			Credentials: credentials,
		},
		SharedConfigState: session.SharedConfigDisable,
	})
	if err != nil {
		return nil, err
	}

	log := config.ErrorLog
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		client: awskms.New(session),
		alias:  "alias/" + AliasName(config.Alias),
		log:    log,
	}, nil
}

// AliasName returns the alias with all characters not
// allowed in a KMS alias name replaced by '-'.
func AliasName(alias string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '/':
			return r
		default:
			return '-'
		}
	}, alias)
}

// Name returns "aws".
func (p *Provider) Name() string { return "aws" }

// LoadOrCreate looks up the KMS key referenced by the
// alias. If no such alias exists, it creates an RSA key
// for encryption and decryption and assigns the alias.
func (p *Provider) LoadOrCreate(ctx context.Context) error {
	_, err := p.load(ctx, true)
	return err
}

// Wrap encrypts the key inside the KMS.
func (p *Provider) Wrap(ctx context.Context, key []byte) ([]byte, error) {
	keyID, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	output, err := p.client.EncryptWithContext(ctx, &awskms.EncryptInput{
		KeyId:               aws.String(keyID),
		Plaintext:           key,
		EncryptionAlgorithm: aws.String(EncryptionAlgorithm),
	})
	if err != nil {
		return nil, p.error(ctx, keychain.Wrap, "aws: failed to wrap key", err)
	}
	return output.CiphertextBlob, nil
}

// Unwrap decrypts the wrapped key inside the KMS.
func (p *Provider) Unwrap(ctx context.Context, wrapped []byte, algorithm string) ([]byte, error) {
	if err := provider.CheckAlgorithm("aws", algorithm); err != nil {
		return nil, err
	}
	keyID, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	output, err := p.client.DecryptWithContext(ctx, &awskms.DecryptInput{
		KeyId:               aws.String(keyID),
		CiphertextBlob:      wrapped,
		EncryptionAlgorithm: aws.String(EncryptionAlgorithm),
	})
	if err != nil {
		return nil, p.error(ctx, keychain.Wrap, "aws: failed to unwrap key", err)
	}
	return output.Plaintext, nil
}

func (p *Provider) load(ctx context.Context, create bool) (string, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.keyID != "" {
		return p.keyID, nil
	}

	keyID, err := p.describe(ctx)
	if errors.Is(err, keychain.ErrNoKeyPair) && create {
		keyID, err = p.create(ctx)
	}
	if err != nil {
		return "", err
	}
	p.keyID = keyID
	return keyID, nil
}

func (p *Provider) describe(ctx context.Context) (string, error) {
	output, err := p.client.DescribeKeyWithContext(ctx, &awskms.DescribeKeyInput{
		KeyId: aws.String(p.alias),
	})
	if err != nil {
		return "", p.error(ctx, keychain.KeyBoundary, "aws: failed to describe key", err)
	}

	metadata := output.KeyMetadata
	if metadata == nil || metadata.KeyId == nil {
		return "", keychain.NewError(keychain.KeyBoundary, "aws: invalid key metadata")
	}
	if aws.StringValue(metadata.KeyUsage) != awskms.KeyUsageTypeEncryptDecrypt ||
		!strings.HasPrefix(aws.StringValue(metadata.CustomerMasterKeySpec), "RSA_") {
		p.log.ErrorContext(ctx, "aws: key cannot be used for RSA encryption",
			slog.String("alias", p.alias),
			slog.String("usage", aws.StringValue(metadata.KeyUsage)),
			slog.String("spec", aws.StringValue(metadata.CustomerMasterKeySpec)))
		return "", keychain.ErrNotPrivateKey
	}
	return aws.StringValue(metadata.KeyId), nil
}

func (p *Provider) create(ctx context.Context) (string, error) {
	output, err := p.client.CreateKeyWithContext(ctx, &awskms.CreateKeyInput{
		CustomerMasterKeySpec: aws.String(awskms.CustomerMasterKeySpecRsa2048),
		KeyUsage:              aws.String(awskms.KeyUsageTypeEncryptDecrypt),
		Description:           aws.String("keychain key pair " + p.alias),
	})
	if err != nil {
		return "", p.error(ctx, keychain.KeyBoundary, "aws: failed to create key", err)
	}
	keyID := aws.StringValue(output.KeyMetadata.KeyId)

	_, err = p.client.CreateAliasWithContext(ctx, &awskms.CreateAliasInput{
		AliasName:   aws.String(p.alias),
		TargetKeyId: aws.String(keyID),
	})
	if err == nil {
		p.log.InfoContext(ctx, "aws: created key", slog.String("alias", p.alias), slog.String("key", keyID))
		return keyID, nil
	}

	// Another party created the alias concurrently. Use
	// its key and schedule the orphaned key for deletion.
	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == awskms.ErrCodeAlreadyExistsException {
		if _, err = p.client.ScheduleKeyDeletionWithContext(ctx, &awskms.ScheduleKeyDeletionInput{
			KeyId:               aws.String(keyID),
			PendingWindowInDays: aws.Int64(7),
		}); err != nil {
			p.log.WarnContext(ctx, "aws: failed to delete orphaned key", slog.String("key", keyID), slog.Any("err", err))
		}
		return p.describe(ctx)
	}
	return "", p.error(ctx, keychain.KeyBoundary, "aws: failed to create key alias", err)
}

// error logs err and converts it into a keychain error.
func (p *Provider) error(ctx context.Context, kind keychain.Kind, msg string, err error) error {
	aerr, ok := err.(awserr.Error)
	if !ok {
		p.log.ErrorContext(ctx, msg, slog.String("alias", p.alias), slog.Any("err", err))
		return keychain.WrapError(kind, msg, err)
	}

	switch aerr.Code() {
	case awskms.ErrCodeNotFoundException:
		return keychain.ErrNoKeyPair
	case awskms.ErrCodeInvalidKeyUsageException:
		p.log.ErrorContext(ctx, "aws: key cannot be used for encryption", slog.String("alias", p.alias), slog.Any("err", aerr))
		return keychain.ErrNotPrivateKey
	case awskms.ErrCodeDisabledException:
		p.log.ErrorContext(ctx, "aws: key is disabled", slog.String("alias", p.alias), slog.Any("err", aerr))
		kind = keychain.KeyBoundary
	case awskms.ErrCodeKeyUnavailableException:
		p.log.ErrorContext(ctx, "aws: key is not available", slog.String("alias", p.alias), slog.Any("err", aerr))
		kind = keychain.KeyBoundary
	case awskms.ErrCodeInvalidStateException:
		p.log.ErrorContext(ctx, "aws: key is in an invalid state", slog.String("alias", p.alias), slog.Any("err", aerr))
		kind = keychain.KeyBoundary
	case awskms.ErrCodeInvalidCiphertextException, awskms.ErrCodeIncorrectKeyException:
		p.log.ErrorContext(ctx, "aws: wrapped key is not authentic", slog.String("alias", p.alias), slog.Any("err", aerr))
		kind = keychain.Wrap
	default:
		p.log.ErrorContext(ctx, msg, slog.String("alias", p.alias), slog.Any("err", aerr))
	}
	return keychain.WrapError(kind, msg, aerr)
}
