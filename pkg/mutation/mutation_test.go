package mutation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"katydid-common-command/pkg/mutation"
	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/fields"
)

var blocklist = []string{"user@example.com", "user2@example.com"}

func noExistingUser(_ context.Context, in *mutation.Instance) error {
	email, err := mutation.Value[string](in, "email")
	if err != nil {
		return err
	}
	for _, blocked := range blocklist {
		if email == blocked {
			return mutation.Fail("email_exists")
		}
	}
	return nil
}

func fullName(_ context.Context, in *mutation.Instance) error {
	name, err := mutation.Value[string](in, "name")
	if err != nil {
		return err
	}
	if len(strings.Fields(name)) < 2 {
		return mutation.Fail("need_full_name", "Please enter a full name.")
	}
	return nil
}

func userSignup() *mutation.Definition {
	return mutation.New("UserSignup").
		Field("email", fields.Char()).
		Field("name", fields.Char()).
		Validator("validate_no_existing_user", noExistingUser).
		Validator("validate_name", fullName).
		Execute(func(_ context.Context, in *mutation.Instance) (any, error) {
			return in.MustGet("email"), nil
		}).
		MustBuild()
}

func TestRun_MissingRequiredField(t *testing.T) {
	def := mutation.New("Simple").
		Field("email", fields.Char()).
		Execute(func(context.Context, *mutation.Instance) (any, error) { return "ok", nil }).
		MustBuild()

	tests := []struct {
		name   string
		inputs core.Inputs
	}{
		{name: "显式传入 nil", inputs: core.Inputs{"email": nil}},
		{name: "未传入", inputs: core.Inputs{}},
		{name: "输入为 nil", inputs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := def.Run(context.Background(), tt.inputs)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Nil(t, result.Value)
			require.NotNil(t, result.Errors)
			assert.True(t, result.Errors.Has("email"))

			entries, _ := result.Errors.Lookup("email")
			assert.Equal(t, "RequiredValidator", entries[0].Code)
		})
	}
}

func TestRun_UserSignup(t *testing.T) {
	def := userSignup()

	t.Run("字段正确但自定义验证失败", func(t *testing.T) {
		result, err := def.Run(context.Background(), core.Inputs{"email": "user@example.com", "name": "Bob"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, []string{"validate_no_existing_user", "validate_name"}, result.Errors.Keys())
		assert.False(t, result.Errors.Has("email"))
		assert.False(t, result.Errors.Has("name"))

		entries, _ := result.Errors.Lookup("validate_no_existing_user")
		assert.Equal(t, []core.ErrorEntry{core.NewErrorEntry("email_exists", "")}, entries)
	})

	t.Run("缺少 name 字段", func(t *testing.T) {
		result, err := def.Run(context.Background(), core.Inputs{"email": "user@example.com"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.True(t, result.Errors.Has("name"))
		assert.True(t, result.Errors.Has("validate_no_existing_user"))
		assert.False(t, result.Errors.Has("email"))
	})

	t.Run("全部通过", func(t *testing.T) {
		result, err := def.Run(context.Background(), core.Inputs{"email": "new@example.com", "name": "Bob Dylan"})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "new@example.com", result.Value)
		assert.Nil(t, result.Errors)
	})
}

func TestRun_DefaultValue(t *testing.T) {
	def := mutation.New("FavoriteBand").
		Field("email", fields.Char()).
		Field("favorite_band", fields.Char(fields.Default("Nickelback"))).
		Execute(func(_ context.Context, in *mutation.Instance) (any, error) {
			return in.Get("favorite_band")
		}).
		MustBuild()

	result, err := def.Run(context.Background(), core.Inputs{"email": "user@example.com"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Nickelback", result.Value)

	result, err = def.Run(context.Background(), core.Inputs{"email": "user@example.com", "favorite_band": "Tool"})
	require.NoError(t, err)
	assert.Equal(t, "Tool", result.Value)
}

func TestRun_OptionalFieldWithoutDefault(t *testing.T) {
	def := mutation.New("Optional").
		Field("location", fields.Char(fields.Optional())).
		Execute(func(_ context.Context, in *mutation.Instance) (any, error) {
			return in.Get("location")
		}).
		MustBuild()

	result, err := def.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, result.Value)
}

func TestRun_RaiseOnError(t *testing.T) {
	def := userSignup()
	ctx := context.Background()

	_, err := def.Run(ctx, core.Inputs{"email": "user@example.com", "name": "Bob"}, mutation.RaiseOnError())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidationFailed)

	var failed *core.FailedValidationError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "UserSignup", failed.Command)
	assert.True(t, failed.Errors.Has("validate_name"))

	_, err = def.Validate(ctx, core.Inputs{}, core.RaiseOnError())
	assert.ErrorIs(t, err, core.ErrValidationFailed)

	// 验证通过时不返回错误
	result, err := def.Run(ctx, core.Inputs{"email": "ok@example.com", "name": "Bob Dylan"}, mutation.RaiseOnError())
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestValidate(t *testing.T) {
	var executed atomic.Bool
	def := mutation.New("ValidateOnly").
		Field("email", fields.Char()).
		Execute(func(context.Context, *mutation.Instance) (any, error) {
			executed.Store(true)
			return nil, nil
		}).
		MustBuild()

	result, err := def.Validate(context.Background(), core.Inputs{"email": "a@b.com"})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.True(t, result.Errors.IsEmpty())

	result, err = def.Validate(context.Background(), core.Inputs{"email": ""})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	entries, _ := result.Errors.Lookup("email")
	assert.Equal(t, "NotBlankValidator", entries[0].Code)

	assert.False(t, executed.Load())
}

func TestRun_ExecuteNotImplemented(t *testing.T) {
	// 声明时不报错
	def, err := mutation.New("NoExecute").Field("email", fields.Char()).Build()
	require.NoError(t, err)

	_, err = def.Run(context.Background(), core.Inputs{"email": "a@b.com"})
	assert.ErrorIs(t, err, core.ErrExecuteNotImplemented)

	// 验证失败时不会执行
	result, err := def.Run(context.Background(), core.Inputs{})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestInstance_UnknownField(t *testing.T) {
	t.Run("execute 中读取", func(t *testing.T) {
		def := mutation.New("Lookup").
			Field("email", fields.Char()).
			Execute(func(_ context.Context, in *mutation.Instance) (any, error) {
				return in.Get("username")
			}).
			MustBuild()

		_, err := def.Run(context.Background(), core.Inputs{"email": "a@b.com"})
		assert.ErrorIs(t, err, core.ErrUnknownField)

		var lookup *core.FieldLookupError
		require.ErrorAs(t, err, &lookup)
		assert.Equal(t, "username", lookup.Field)
		assert.Equal(t, "Lookup", lookup.Command)
	})

	t.Run("自定义验证器中读取", func(t *testing.T) {
		def := mutation.New("Lookup").
			Validator("validate_username", func(_ context.Context, in *mutation.Instance) error {
				_, err := in.Get("username")
				return err
			}).
			MustBuild()

		result, err := def.Validate(context.Background(), nil)
		require.NoError(t, err)
		entries, ok := result.Errors.Lookup("validate_username")
		require.True(t, ok)
		assert.Equal(t, core.CodeUnexpected, entries[0].Code)
		assert.ErrorIs(t, entries[0].Err, core.ErrUnknownField)
	})

	t.Run("MustGet panic", func(t *testing.T) {
		in := userSignup().NewInstance(nil)
		assert.Panics(t, func() { in.MustGet("username") })
	})
}

func TestInstance(t *testing.T) {
	def := userSignup()
	inputs := core.Inputs{"email": "a@b.com", "count": 3}
	in := def.NewInstance(inputs)

	assert.Equal(t, "UserSignup", in.Name())
	assert.Equal(t, `<Mutation "UserSignup">`, in.String())
	assert.Equal(t, `<Mutation "UserSignup">`, fmt.Sprint(in))
	assert.True(t, in.Supplied("email"))
	assert.False(t, in.Supplied("name"))

	// 输入被复制
	inputs["email"] = "changed@b.com"
	assert.Equal(t, "a@b.com", in.MustGet("email"))
	in.Inputs()["email"] = "changed@b.com"
	assert.Equal(t, "a@b.com", in.MustGet("email"))

	email, err := mutation.Value[string](in, "email")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	name, err := mutation.Value[string](in, "name")
	require.NoError(t, err)
	assert.Equal(t, "", name)

	_, err = mutation.Value[int](in, "email")
	assert.ErrorIs(t, err, core.ErrFieldType)
}

func TestDefinition_Metadata(t *testing.T) {
	def := userSignup()
	assert.Equal(t, "UserSignup", def.Name())
	assert.Equal(t, []string{"email", "name"}, def.Fields())
	assert.Equal(t, []string{"validate_no_existing_user", "validate_name"}, def.Validators())

	f, ok := def.Field("email")
	require.True(t, ok)
	assert.Equal(t, fields.KindChar, f.Kind())

	_, ok = def.Field("username")
	assert.False(t, ok)
}

func TestBuilder_Errors(t *testing.T) {
	noop := func(context.Context, *mutation.Instance) error { return nil }

	tests := []struct {
		name    string
		builder *mutation.Builder
		want    error
	}{
		{name: "命令名为空", builder: mutation.New(""), want: core.ErrEmptyName},
		{name: "字段名为空", builder: mutation.New("X").Field("", fields.Char()), want: core.ErrEmptyName},
		{name: "字段重复", builder: mutation.New("X").Field("a", fields.Char()).Field("a", fields.Boolean()), want: core.ErrDuplicateField},
		{name: "验证器重复", builder: mutation.New("X").Validator("v", noop).Validator("v", noop), want: core.ErrDuplicateValidator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			assert.ErrorIs(t, err, tt.want)
			assert.Panics(t, func() { tt.builder.MustBuild() })
		})
	}
}

func TestRun_SavedObject(t *testing.T) {
	def := mutation.New("Attach").
		Field("user", fields.Object(fields.Saved())).
		Execute(func(context.Context, *mutation.Instance) (any, error) { return true, nil }).
		MustBuild()

	result, err := def.Run(context.Background(), core.Inputs{"user": savedUser{id: 1}})
	require.NoError(t, err)
	assert.True(t, result.Success)

	result, err = def.Run(context.Background(), core.Inputs{"user": savedUser{}})
	require.NoError(t, err)
	entries, _ := result.Errors.Lookup("user")
	assert.Equal(t, "SavedObjectValidator", entries[0].Code)
}

type savedUser struct{ id int }

func (u savedUser) PrimaryKey() any { return u.id }

func TestRun_Concurrent(t *testing.T) {
	def := userSignup()

	var (
		wg     conc.WaitGroup
		passed atomic.Int32
	)
	for i := 0; i < 50; i++ {
		i := i
		wg.Go(func() {
			inputs := core.Inputs{"email": fmt.Sprintf("u%d@example.com", i), "name": "Bob Dylan"}
			if i%2 == 0 {
				inputs["name"] = "Bob"
			}
			result, err := def.Run(context.Background(), inputs)
			if err == nil && result.Success {
				passed.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(25), passed.Load())
}

func TestRun_ExecuteError(t *testing.T) {
	errStore := errors.New("store unavailable")
	def := mutation.New("Failing").
		Execute(func(context.Context, *mutation.Instance) (any, error) { return nil, errStore }).
		MustBuild()

	result, err := def.Run(context.Background(), nil)
	assert.ErrorIs(t, err, errStore)
	assert.Nil(t, result)
}

func TestRun_LoggerOption(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	def := mutation.New("Logged").
		Field("email", fields.Char()).
		Validator("first", func(context.Context, *mutation.Instance) error { return errors.New("boom") }).
		Logger(zap.New(obs)).
		MustBuild()

	_, err := def.Validate(context.Background(), nil)
	require.NoError(t, err)

	entries := logs.FilterMessage("validation aborted on unexpected fault").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Logged", entries[0].ContextMap()["mutation"])
	assert.Equal(t, "first", entries[0].ContextMap()["validator"])
}
