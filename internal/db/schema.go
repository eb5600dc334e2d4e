package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- USER TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS user SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS username ON user TYPE string;
    DEFINE FIELD IF NOT EXISTS email ON user TYPE string;
    DEFINE FIELD IF NOT EXISTS password_hash ON user TYPE string;
    DEFINE FIELD IF NOT EXISTS role ON user TYPE string DEFAULT "user";
    DEFINE FIELD IF NOT EXISTS plan ON user TYPE string DEFAULT "free";
    DEFINE FIELD IF NOT EXISTS email_verified ON user TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS verify_token_hash ON user TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS verify_token_expires ON user TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS reset_token_hash ON user TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS reset_token_expires ON user TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS login_attempts ON user TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS lock_until ON user TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS last_login ON user TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS created_at ON user TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON user TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS user_email ON user FIELDS email UNIQUE;
    DEFINE INDEX IF NOT EXISTS user_username ON user FIELDS username UNIQUE;

    -- ==========================================================================
    -- REFRESH TOKEN TABLE
    -- ==========================================================================
    -- Tokens are stored hashed; the raw value only ever travels to the client.
    DEFINE TABLE IF NOT EXISTS refresh_token SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user ON refresh_token TYPE record<user>;
    DEFINE FIELD IF NOT EXISTS token_hash ON refresh_token TYPE string;
    DEFINE FIELD IF NOT EXISTS expires_at ON refresh_token TYPE datetime;
    DEFINE FIELD IF NOT EXISTS created_at ON refresh_token TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS refresh_token_hash ON refresh_token FIELDS token_hash UNIQUE;
    DEFINE INDEX IF NOT EXISTS refresh_token_user ON refresh_token FIELDS user;
`
