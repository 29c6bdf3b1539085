package inject

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/samber/do"

	"fluxstudio/internal/credential"
	"fluxstudio/internal/handler"
	"fluxstudio/internal/image"
	"fluxstudio/internal/log"
	"fluxstudio/internal/page"
	"fluxstudio/internal/param"
	"fluxstudio/internal/render"
)

func Setup(ctx context.Context) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Info(fmt.Sprintf(format, args...))
		},
	})

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: 30 * time.Second})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	do.ProvideNamedValue[string](injector, "port", param.Lookup("PORT", "8080"))
	do.ProvideNamedValue[string](injector, "fal_base_url", param.Lookup("FAL_BASE_URL", "https://queue.fal.run"))
	do.ProvideNamedValue[string](injector, "fal_model", param.Lookup("FAL_MODEL", "fal-ai/flux-realism"))
	do.ProvideNamed[time.Duration](injector, "fal_poll_interval", func(i *do.Injector) (time.Duration, error) {
		return time.ParseDuration(param.Lookup("FAL_POLL_INTERVAL", "500ms"))
	})

	// Optional server-side default credential: from SSM when FAL_KEY_PARAM
	// names a parameter, otherwise from the environment. The key entered in
	// the UI always overrides.
	do.ProvideNamed[string](injector, "fal_key", func(i *do.Injector) (string, error) {
		if path := os.Getenv("FAL_KEY_PARAM"); path != "" {
			return do.MustInvoke[param.Fetcher](i).Fetch(ctx, path)
		}
		return os.Getenv("FAL_KEY"), nil
	})

	do.Provide[*credential.Holder](injector, credential.NewHolder)
	do.Provide[image.Generator](injector, image.NewFalGenerator)
	do.Provide[*render.Fetcher](injector, render.NewFetcher)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
